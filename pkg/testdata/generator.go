package testdata

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Generator produces realistic fake CRM records for seeding and demos.
// The same seed always yields the same sequence.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator from a seed.
func NewGenerator(seed int64) *Generator {
	gofakeit.Seed(seed)
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Vocabulary the generated records draw from. Statuses match the pipeline
// stages the dashboard buckets on.
var (
	LeadStatuses  = []string{"New", "Contacted", "Interested", "Qualified", "Proposal", "Negotiation", "Closed Won", "Closed Lost"}
	Industries    = []string{"Trucking", "Logistics", "Construction", "Manufacturing", "Retail", "Food Service", "Healthcare", "Agriculture"}
	UserRoles     = []string{"Territory Admin", "Territory Manager", "Sales User"}
	ActivityTypes = []string{"Call", "Email", "Meeting", "Task", "Follow-up"}
	Priorities    = []string{"Low", "Medium", "High"}
)

// FakeUser is a generated user record.
type FakeUser struct {
	Email     string
	FirstName string
	LastName  string
	FullName  string
	Role      string
}

// User generates a user with a company-domain email. The index keeps
// generated emails collision-free within one run.
func (g *Generator) User(index int) FakeUser {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	return FakeUser{
		Email:     fmt.Sprintf("%s.%s%d@tallacworks.com", first, last, index),
		FirstName: first,
		LastName:  last,
		FullName:  first + " " + last,
		Role:      g.Pick(UserRoles),
	}
}

// FakeTerritory is a generated territory with its child collections.
type FakeTerritory struct {
	Name         string
	Owner        string
	Mobile       string
	Address      string
	ManagerEmail string
	OwnerNames   []string
	OwnerEmails  []string
	OwnerPhones  []string
	ZipCodes     []string
	Cities       []string
	States       []string
}

// Territory generates a territory with 1-3 owners and 2-6 zip codes.
func (g *Generator) Territory() FakeTerritory {
	t := FakeTerritory{
		Name:         fmt.Sprintf("%s %s", gofakeit.City(), gofakeit.State()),
		Owner:        gofakeit.Name(),
		Mobile:       gofakeit.Phone(),
		Address:      gofakeit.Address().Address,
		ManagerEmail: gofakeit.Email(),
	}
	for i := 0; i < 1+g.rng.Intn(3); i++ {
		t.OwnerNames = append(t.OwnerNames, gofakeit.Name())
		t.OwnerEmails = append(t.OwnerEmails, gofakeit.Email())
		t.OwnerPhones = append(t.OwnerPhones, gofakeit.Phone())
	}
	for i := 0; i < 2+g.rng.Intn(5); i++ {
		t.ZipCodes = append(t.ZipCodes, gofakeit.Zip())
		t.Cities = append(t.Cities, gofakeit.City())
		t.States = append(t.States, gofakeit.StateAbr())
	}
	return t
}

// FakeLead is a generated prospect record.
type FakeLead struct {
	CompanyName        string
	Industry           string
	Status             string
	PrimaryContactName string
	PrimaryTitle       string
	PrimaryPhone       string
	PrimaryEmail       string
	City               string
	State              string
	ZipCode            string
	CallbackDate       *string // YYYY-MM-DD
	CallbackTime       *string // HH:MM:SS
}

// Lead generates a prospect. About 40% carry a callback scheduled within
// a window spanning two weeks back to three weeks out, so seeded data
// always exercises the overdue/today/scheduled queue buckets.
func (g *Generator) Lead() FakeLead {
	l := FakeLead{
		CompanyName:        gofakeit.Company(),
		Industry:           g.Pick(Industries),
		Status:             g.Pick(LeadStatuses),
		PrimaryContactName: gofakeit.Name(),
		PrimaryTitle:       gofakeit.JobTitle(),
		PrimaryPhone:       gofakeit.Phone(),
		PrimaryEmail:       gofakeit.Email(),
		City:               gofakeit.City(),
		State:              gofakeit.StateAbr(),
		ZipCode:            gofakeit.Zip(),
	}
	if g.rng.Float64() < 0.4 {
		date := gofakeit.DateRange(
			time.Now().AddDate(0, 0, -14),
			time.Now().AddDate(0, 0, 21)).Format("2006-01-02")
		clock := fmt.Sprintf("%02d:%02d:00", 8+g.rng.Intn(9), 15*g.rng.Intn(4))
		l.CallbackDate = &date
		l.CallbackTime = &clock
	}
	return l
}

// FakeActivity is a generated activity record.
type FakeActivity struct {
	ActivityType  string
	Title         string
	Priority      string
	ScheduledDate string
	Description   string
}

// Activity generates an activity scheduled within a month either side of now.
func (g *Generator) Activity() FakeActivity {
	return FakeActivity{
		ActivityType: g.Pick(ActivityTypes),
		Title:        gofakeit.Sentence(4),
		Priority:     g.Pick(Priorities),
		ScheduledDate: gofakeit.DateRange(
			time.Now().AddDate(0, -1, 0),
			time.Now().AddDate(0, 1, 0)).Format("2006-01-02"),
		Description: gofakeit.Sentence(10),
	}
}

// FakeNote is a generated note.
type FakeNote struct {
	Title   string
	Content string
}

// Note generates a note.
func (g *Generator) Note() FakeNote {
	return FakeNote{
		Title:   gofakeit.Sentence(3),
		Content: gofakeit.Paragraph(1, 3, 8, " "),
	}
}

// Pick returns a random element of choices.
func (g *Generator) Pick(choices []string) string {
	return choices[g.rng.Intn(len(choices))]
}

// Chance reports true with probability p.
func (g *Generator) Chance(p float64) bool {
	return g.rng.Float64() < p
}

// IntBetween returns a value in [min, max].
func (g *Generator) IntBetween(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}
