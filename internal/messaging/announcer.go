package messaging

import (
	"bytes"
	"context"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-log"
	"golang.org/x/text/language"

	"colonyworld/internal/clock"
	"colonyworld/internal/world"
)

// Bus subjects for world transitions.
const (
	SubjectTurnOpened   = "world.turn.opened"
	SubjectTurnResolved = "world.turn.resolved"
	SubjectSeasonEnded  = "world.season.ended"
)

// Publisher is the slice of the bus the announcer needs.
type Publisher interface {
	PublishJSON(subject string, v any) error
}

var announceFuncs = sprig.TxtFuncMap()

// Announcement templates. Data is the payload struct for the subject, so
// bridges rendering their own text can rely on the same fields.
const (
	turnOpenedTmpl   = `Day {{ .Day }} begins: {{ .Title }}. Voting is open for {{ .ClosesIn }}.`
	turnResolvedTmpl = `Day {{ .Day }} resolved: {{ .Choice }} ({{ .Reason }}). HP {{ .After.HP }}, food {{ .After.Food }}, meds {{ .After.Meds }}, money {{ .After.Money }}.`
	seasonEndedTmpl  = `Season over: {{ .Status | toString | replace "_" " " }}.`
)

// TurnOpenedPayload is published on SubjectTurnOpened.
type TurnOpenedPayload struct {
	TurnID  string    `json:"turnId"`
	Day     int       `json:"day"`
	EventID string    `json:"eventId"`
	Title    string    `json:"title"`
	EndsAt   time.Time `json:"endsAt"`
	ClosesIn string    `json:"closesIn"`
	Text     string    `json:"text"`
}

// TurnResolvedPayload is published on SubjectTurnResolved.
type TurnResolvedPayload struct {
	TurnID string          `json:"turnId"`
	Day    int             `json:"day"`
	Choice string          `json:"choice"`
	Reason world.Reason    `json:"reason"`
	Before world.Resources `json:"before"`
	After  world.Resources `json:"after"`
	Text   string          `json:"text"`
}

// SeasonEndedPayload is published on SubjectSeasonEnded.
type SeasonEndedPayload struct {
	Status world.Status `json:"status"`
	Text   string       `json:"text"`
}

// WorldAnnouncer renders world transitions into bus messages. Publishing is
// best-effort: a down bus never blocks or fails the simulation.
type WorldAnnouncer struct {
	pub    Publisher
	locale language.Tag

	turnOpened   *template.Template
	turnResolved *template.Template
	seasonEnded  *template.Template
}

// NewWorldAnnouncer builds an announcer publishing through pub. Announcement
// text uses the given locale for event titles and choice labels.
func NewWorldAnnouncer(pub Publisher, locale language.Tag) *WorldAnnouncer {
	mustParse := func(name, text string) *template.Template {
		return template.Must(template.New(name).Funcs(announceFuncs).Parse(text))
	}

	return &WorldAnnouncer{
		pub:          pub,
		locale:       locale,
		turnOpened:   mustParse("turn_opened", turnOpenedTmpl),
		turnResolved: mustParse("turn_resolved", turnResolvedTmpl),
		seasonEnded:  mustParse("season_ended", seasonEndedTmpl),
	}
}

func (a *WorldAnnouncer) TurnOpened(t *world.Turn) {
	payload := TurnOpenedPayload{
		TurnID:   t.ID,
		Day:      t.Day,
		EventID:  t.Event.ID,
		Title:    t.Event.Title.In(a.locale),
		EndsAt:   t.EndsAt,
		ClosesIn: clock.FormatCountdown(t.EndsAt.Sub(t.StartedAt)),
	}
	payload.Text = a.render(a.turnOpened, payload)
	a.publish(SubjectTurnOpened, payload)
}

func (a *WorldAnnouncer) TurnResolved(e world.HistoryEntry) {
	payload := TurnResolvedPayload{
		TurnID: e.TurnID,
		Day:    e.Day,
		Choice: e.SelectedChoiceLabel.In(a.locale),
		Reason: e.Reason,
		Before: e.Before,
		After:  e.After,
	}
	payload.Text = a.render(a.turnResolved, payload)
	a.publish(SubjectTurnResolved, payload)
}

func (a *WorldAnnouncer) SeasonEnded(s world.Status) {
	payload := SeasonEndedPayload{Status: s}
	payload.Text = a.render(a.seasonEnded, payload)
	a.publish(SubjectSeasonEnded, payload)
}

func (a *WorldAnnouncer) render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.GetLogger(context.Background()).WithError(err).Error("rendering announcement")
		return ""
	}
	return buf.String()
}

func (a *WorldAnnouncer) publish(subject string, payload any) {
	if err := a.pub.PublishJSON(subject, payload); err != nil {
		log.GetLogger(context.Background()).WithError(err).Warn("publishing announcement")
	}
}
