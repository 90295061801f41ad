// nationportal/models/models.go
package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// --- Core Document Model ---

// NationDocument is the single persisted record holding all portal content.
type NationDocument struct {
	Stats   Stats     `json:"stats"`
	Details Details   `json:"details"`
	Posts   []Post    `json:"posts"`
	Users   []Citizen `json:"users"`
}

// Stats holds the scalar display fields of the overview page. Every value is a
// display string, including the numeric-looking ones.
type Stats struct {
	Territory       string `json:"territory"`
	Flag            string `json:"flag"`
	CoatOfArms      string `json:"coatOfArms"`
	FormalName      string `json:"formalName"`
	EnglishName     string `json:"englishName"`
	Capital         string `json:"capital"`
	OfficialName    string `json:"officialName"`
	Language        string `json:"language"`
	Currency        string `json:"currency"`
	Population      string `json:"population"`
	TotalGDP        string `json:"totalGdp"`
	HDI             string `json:"hdi"`
	Area            string `json:"area"`
	Motto           string `json:"motto"`
	PoliticalSystem string `json:"politicalSystem"`
	HeadOfState     string `json:"headOfState"`
	HistoryOverview string `json:"historyOverview"`
}

// Fields exposes each stats field by its JSON name.
func (s *Stats) Fields() map[string]*string {
	return map[string]*string{
		"territory":       &s.Territory,
		"flag":            &s.Flag,
		"coatOfArms":      &s.CoatOfArms,
		"formalName":      &s.FormalName,
		"englishName":     &s.EnglishName,
		"capital":         &s.Capital,
		"officialName":    &s.OfficialName,
		"language":        &s.Language,
		"currency":        &s.Currency,
		"population":      &s.Population,
		"totalGdp":        &s.TotalGDP,
		"hdi":             &s.HDI,
		"area":            &s.Area,
		"motto":           &s.Motto,
		"politicalSystem": &s.PoliticalSystem,
		"headOfState":     &s.HeadOfState,
		"historyOverview": &s.HistoryOverview,
	}
}

// StatsFieldNames lists the stats keys in display order.
var StatsFieldNames = []string{
	"formalName", "englishName", "officialName", "motto", "territory", "capital",
	"language", "currency", "population", "totalGdp", "hdi", "area",
	"politicalSystem", "headOfState", "historyOverview", "flag", "coatOfArms",
}

// Details is the closed set of content sections.
type Details struct {
	History    History             `json:"history"`
	Military   Military            `json:"military"`
	Economy    Economy             `json:"economy"`
	Culture    Culture             `json:"culture"`
	Nature     Nature              `json:"nature"`
	Government []GovernmentSection `json:"government"`
}

type History struct {
	Ancient      string `json:"ancient"`
	Medieval     string `json:"medieval"`
	Modern       string `json:"modern"`
	Contemporary string `json:"contemporary"`
}

// Era names a history period.
type Era string

const (
	EraAncient      Era = "ancient"
	EraMedieval     Era = "medieval"
	EraModern       Era = "modern"
	EraContemporary Era = "contemporary"
)

// Eras is the display order of history periods.
var Eras = []Era{EraAncient, EraMedieval, EraModern, EraContemporary}

// Text returns a pointer to the narrative of the given era, or nil for an unknown era.
func (h *History) Text(era Era) *string {
	switch era {
	case EraAncient:
		return &h.Ancient
	case EraMedieval:
		return &h.Medieval
	case EraModern:
		return &h.Modern
	case EraContemporary:
		return &h.Contemporary
	}
	return nil
}

type Military struct {
	Overview  string           `json:"overview"`
	Army      string           `json:"army"`
	Navy      string           `json:"navy"`
	Airforce  string           `json:"airforce"`
	Numerical MilitaryNumerics `json:"numerical"`
}

// MilitaryNumerics holds the typed counters of the defense page.
type MilitaryNumerics struct {
	TroopCount      int64 `json:"troopCount"`
	TankCount       int64 `json:"tankCount"`
	ShipCount       int64 `json:"shipCount"`
	AircraftCount   int64 `json:"aircraftCount"`
	NuclearWarheads int64 `json:"nuclearWarheads"`
	ReadinessLevel  int   `json:"readinessLevel"`
}

type Economy struct {
	Overview string       `json:"overview"`
	Stats    EconomyStats `json:"stats"`
}

type EconomyStats struct {
	GDPGrowthRate string   `json:"gdpGrowthRate"`
	KeyIndustries []string `json:"keyIndustries"`
}

type Culture struct {
	Overview   string   `json:"overview"`
	Traditions []string `json:"traditions"`
	Cuisine    string   `json:"cuisine"`
	Arts       string   `json:"arts"`
}

// Nature backs the geography page.
type Nature struct {
	Overview  string   `json:"overview"`
	Climate   string   `json:"climate"`
	Terrain   string   `json:"terrain"`
	Resources []string `json:"resources"`
}

type GovernmentSection struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

// --- Forum & Citizens ---

// Category is the closed set of forum post categories.
type Category string

const (
	CategoryGeneral  Category = "general"
	CategoryPetition Category = "petition"
)

// ParseCategory maps a form value to a Category. Empty means general.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case "", CategoryGeneral:
		return CategoryGeneral, nil
	case CategoryPetition:
		return CategoryPetition, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

type Post struct {
	ID        string   `json:"id"`
	Author    string   `json:"author"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Timestamp Millis   `json:"timestamp"`
	Category  Category `json:"category"`
	Reports   []Report `json:"reports"`
}

type Report struct {
	Reporter  string `json:"reporter"`
	Reason    string `json:"reason"`
	Timestamp Millis `json:"timestamp"`
}

// Citizen is a stored user record. The password is kept as supplied.
type Citizen struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CreatedAt Millis `json:"createdAt"`
}

// --- Timestamps ---

// secondsCutoff separates second-based from millisecond-based stored values.
const secondsCutoff = 10_000_000_000

// Millis is a Unix timestamp in milliseconds. Decoding accepts integer or
// fractional numbers and reads values up to secondsCutoff as seconds.
type Millis int64

// NewMillis converts a time to Millis.
func NewMillis(t time.Time) Millis { return Millis(t.UnixMilli()) }

// Time converts back to a time.Time.
func (m Millis) Time() time.Time { return time.UnixMilli(int64(m)) }

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", b, err)
	}
	if v <= secondsCutoff {
		v *= 1000
	}
	*m = Millis(int64(v))
	return nil
}

// --- Copying ---

// Clone returns a deep copy of the document. Nil and empty slices keep their form.
func (d *NationDocument) Clone() *NationDocument {
	if d == nil {
		return nil
	}
	c := *d
	c.Details.Economy.Stats.KeyIndustries = cloneStrings(d.Details.Economy.Stats.KeyIndustries)
	c.Details.Culture.Traditions = cloneStrings(d.Details.Culture.Traditions)
	c.Details.Nature.Resources = cloneStrings(d.Details.Nature.Resources)
	if d.Details.Government != nil {
		c.Details.Government = make([]GovernmentSection, len(d.Details.Government))
		for i, s := range d.Details.Government {
			s.Items = cloneStrings(s.Items)
			c.Details.Government[i] = s
		}
	}
	if d.Posts != nil {
		c.Posts = make([]Post, len(d.Posts))
		for i, p := range d.Posts {
			if p.Reports != nil {
				p.Reports = append(make([]Report, 0, len(p.Reports)), p.Reports...)
			}
			c.Posts[i] = p
		}
	}
	if d.Users != nil {
		c.Users = append(make([]Citizen, 0, len(d.Users)), d.Users...)
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
