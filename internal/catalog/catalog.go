// Package catalog holds the fixed set of world events the simulation draws
// from. Events are pure data: a bilingual title and description plus two to
// four choices, each carrying a resource delta. The interesting machinery
// lives in the world engine; the catalog only validates, looks up, and picks.
package catalog

import (
	"fmt"
	"math/rand"

	"github.com/pixil98/go-errors"
	"golang.org/x/text/language"
)

var localeMatcher = language.NewMatcher([]language.Tag{
	language.Korean,
	language.English,
})

// LocalizedText is a Korean/English string pair. The UI renders both; the
// announcer picks one with In.
type LocalizedText struct {
	Ko string `json:"ko"`
	En string `json:"en"`
}

// In returns the variant best matching the given language tag.
func (t LocalizedText) In(tag language.Tag) string {
	_, idx, _ := localeMatcher.Match(tag)
	if idx == 0 {
		return t.Ko
	}
	return t.En
}

func (t LocalizedText) validate(field string) error {
	if t.Ko == "" || t.En == "" {
		return fmt.Errorf("%s must be set in both languages", field)
	}
	return nil
}

// Delta is the resource change a choice applies when it wins a turn.
type Delta struct {
	HP    int `json:"hp"`
	Food  int `json:"food"`
	Meds  int `json:"meds"`
	Money int `json:"money"`
}

// Choice is one selectable outcome of an event.
type Choice struct {
	ID          string        `json:"id"`
	Label       LocalizedText `json:"label"`
	Description LocalizedText `json:"description"`
	Delta       Delta         `json:"delta"`
}

// Event is a turn template: a situation and its choices.
type Event struct {
	ID          string        `json:"id"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Choices     []Choice      `json:"choices"`
}

const (
	minChoices = 2
	maxChoices = 4
)

func (e *Event) Validate() error {
	el := errors.NewErrorList()

	if e.ID == "" {
		el.Add(fmt.Errorf("id must be set"))
	}
	el.Add(e.Title.validate("title"))
	el.Add(e.Description.validate("description"))

	if len(e.Choices) < minChoices || len(e.Choices) > maxChoices {
		el.Add(fmt.Errorf("event must have between %d and %d choices, got %d", minChoices, maxChoices, len(e.Choices)))
	}

	seen := map[string]bool{}
	for i, c := range e.Choices {
		if c.ID == "" {
			el.Add(fmt.Errorf("choice %d: id must be set", i))
			continue
		}
		if seen[c.ID] {
			el.Add(fmt.Errorf("choice %d: duplicate id %q", i, c.ID))
		}
		seen[c.ID] = true
		el.Add(c.Label.validate(fmt.Sprintf("choice %q label", c.ID)))
	}

	return el.Err()
}

// Choice returns the event's choice with the given id.
func (e *Event) Choice(id string) (*Choice, bool) {
	for i := range e.Choices {
		if e.Choices[i].ID == id {
			return &e.Choices[i], true
		}
	}
	return nil, false
}

// Catalog is an immutable, validated set of events.
type Catalog struct {
	events []*Event
	byID   map[string]*Event
}

// New validates the given events and builds a catalog from them.
func New(events []*Event) (*Catalog, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one event")
	}

	byID := make(map[string]*Event, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("validating event %q: %w", e.ID, err)
		}
		if _, ok := byID[e.ID]; ok {
			return nil, fmt.Errorf("duplicate event id %q", e.ID)
		}
		byID[e.ID] = e
	}

	return &Catalog{events: events, byID: byID}, nil
}

// Get returns the event with the given id.
func (c *Catalog) Get(id string) (*Event, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Pick selects an event uniformly at random from the catalog.
func (c *Catalog) Pick(r *rand.Rand) *Event {
	return c.events[r.Intn(len(c.events))]
}

// Len returns the number of events in the catalog.
func (c *Catalog) Len() int {
	return len(c.events)
}
