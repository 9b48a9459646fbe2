package filter

import (
	"strings"

	"github.com/amishk599/jobfeed/internal/model"
	"github.com/amishk599/jobfeed/internal/normalize"
)

// TopicFilter matches jobs whose text mentions any of its topics.
// Matching is a case-insensitive substring test. An empty topic list matches
// every job.
type TopicFilter struct {
	topics []string
}

// NewTopicFilter returns a filter over topics. Blank and repeated topics are dropped.
func NewTopicFilter(topics []string) *TopicFilter {
	return &TopicFilter{topics: normalize.NormalizeTags(topics)}
}

// ParseTopicFilter builds a filter from a comma-delimited topic list, the form
// subscribers store their topics in.
func ParseTopicFilter(topics string) *TopicFilter {
	return &TopicFilter{topics: normalize.ParseTags(topics)}
}

// Topics returns the normalized topic list.
func (f *TopicFilter) Topics() []string {
	return f.topics
}

// Match returns true if the job's title, company, tags or description
// mention any topic.
func (f *TopicFilter) Match(job model.Job) bool {
	if len(f.topics) == 0 {
		return true
	}
	return normalize.MatchTopics(JobText(job), f.topics)
}

// JobText is the text topic matching runs against: title, company, tags and
// description joined by spaces.
func JobText(job model.Job) string {
	parts := make([]string, 0, 3+len(job.Tags))
	parts = append(parts, job.Title, job.Company)
	parts = append(parts, job.Tags...)
	parts = append(parts, job.Description)
	return strings.Join(parts, " ")
}
