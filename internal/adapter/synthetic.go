package adapter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

// DefaultSyntheticPerBoard is how many postings a synthetic board produces per
// fetch when no count is configured.
const DefaultSyntheticPerBoard = 5

type syntheticRole struct {
	title string
	tags  []string
}

var syntheticRoles = []syntheticRole{
	{"Senior Solidity Engineer", []string{"solidity", "web3", "smart-contracts"}},
	{"Smart Contract Auditor", []string{"solidity", "security", "web3"}},
	{"Junior Frontend Developer", []string{"react", "typescript"}},
	{"Backend Engineer (Go)", []string{"go", "postgres", "distributed-systems"}},
	{"Staff Platform Engineer", []string{"kubernetes", "terraform", "go"}},
	{"NFT Marketplace Engineer", []string{"nft", "web3", "typescript"}},
	{"Rust Protocol Engineer", []string{"rust", "blockchain"}},
	{"Head of Engineering", []string{"leadership", "web3"}},
	{"DevRel Engineer", []string{"developer-relations", "web3"}},
	{"Data Engineer", []string{"python", "spark", "sql"}},
}

var syntheticCompanies = []struct {
	name     string
	location string
}{
	{"Chainforge", "Remote"},
	{"Blockwell Labs", "New York, NY"},
	{"Ledgerly", "London, UK"},
	{"Mintpath", "Berlin, Germany"},
	{"Nodeworks", "Remote - US"},
	{"Hashgrid", "Toronto, Canada"},
	{"Vaultline", "Singapore"},
}

var syntheticSalaryBands = []struct{ lo, hi int }{
	{70, 110},
	{100, 150},
	{120, 180},
	{150, 220},
}

// SyntheticAdapter fabricates postings for a named board from static role and
// company tables. Its output is not authoritative: URLs never resolve and
// dates and salaries are random.
type SyntheticAdapter struct {
	board    string
	perBoard int

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSyntheticAdapter creates a generator for board. rng may be nil, in which
// case a randomly seeded source is used.
func NewSyntheticAdapter(board string, perBoard int, rng *rand.Rand) *SyntheticAdapter {
	if perBoard <= 0 {
		perBoard = DefaultSyntheticPerBoard
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SyntheticAdapter{
		board:    board,
		perBoard: perBoard,
		rng:      rng,
		now:      time.Now,
	}
}

// FetchJobs returns perBoard generated postings. It never fails unless the
// context is already done.
func (a *SyntheticAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now().UTC()
	jobs := make([]model.Job, 0, a.perBoard)
	for range a.perBoard {
		role := syntheticRoles[a.rng.IntN(len(syntheticRoles))]
		company := syntheticCompanies[a.rng.IntN(len(syntheticCompanies))]
		band := syntheticSalaryBands[a.rng.IntN(len(syntheticSalaryBands))]
		posted := now.Add(-time.Duration(a.rng.IntN(14*24)) * time.Hour)

		jobs = append(jobs, model.Job{
			Title:       role.title,
			Company:     company.name,
			Location:    company.location,
			Remote:      isRemote(company.location, role.title),
			Tags:        append([]string{a.board}, role.tags...),
			URL:         fmt.Sprintf("https://%s.example/jobs/%s/%s", slugify(a.board), slugify(company.name), slugify(role.title)),
			Source:      FamilySynthetic + ":" + a.board,
			PostedAt:    &posted,
			Salary:      fmt.Sprintf("$%dk - $%dk", band.lo, band.hi),
			Description: fmt.Sprintf("%s is hiring a %s. Generated listing from the %s board.", company.name, role.title, a.board),
		})
	}
	return jobs, nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
