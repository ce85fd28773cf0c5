package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/sirupsen/logrus"
)

// Property names expected on the three catalog databases. The store never
// assumes anything else about the schemas.
const (
	// Quiz database
	propQuestion     = "Name"
	propSubject      = "Subject"
	propAnswer       = "Answer"
	propRepetitions  = "Repetitions"
	propEaseFactor   = "Ease factor"
	propInterval     = "Interval"
	propNextReview   = "Next review"
	propLastReviewed = "Last reviewed"

	// Review log database
	propEventName      = "Name"
	propEventQuiz      = "Quiz"
	propEventResult    = "Result"
	propEventOccurred  = "Reviewed at"
	propEventProcessed = "Processed"

	// Study plan database
	propPlanName      = "Name"
	propPlanDate      = "Date"
	propPlanSubjects  = "Subjects"
	propPlanShortfall = "Shortfall"
	propPlanQuizzes   = "Quizzes"
)

// Store adapts the Notion catalog databases to the workflow store
// interfaces. Items, review events and day plans each live in their own
// database; pages are referenced by their Notion page ids.
type Store struct {
	client   *Client
	quizDB   string
	eventsDB string
	plansDB  string
	log      *logrus.Logger
}

// NewStore creates a Notion-backed store over the three catalog databases.
func NewStore(client *Client, quizDB, eventsDB, plansDB string, log *logrus.Logger) *Store {
	return &Store{
		client:   client,
		quizDB:   quizDB,
		eventsDB: eventsDB,
		plansDB:  plansDB,
		log:      log,
	}
}

// DueItems returns quiz pages whose next review date is on or before asOf.
func (s *Store) DueItems(ctx context.Context, asOf time.Time) ([]models.Item, error) {
	filter := map[string]interface{}{
		"property": propNextReview,
		"date": map[string]interface{}{
			"on_or_before": asOf.Format(dateLayout),
		},
	}
	sorts := []map[string]interface{}{
		{"property": propNextReview, "direction": "ascending"},
	}
	pages, err := s.client.QueryDatabase(ctx, s.quizDB, filter, sorts)
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(pages))
	for _, page := range pages {
		item := pageToItem(page)
		if item.Subject == "" {
			// Без предмета элемент нельзя сбалансировать в плане.
			s.log.Warnf("quiz page %s has no subject, skipping", page.ID)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// AllItems returns every quiz page in the catalog, ordered by subject.
func (s *Store) AllItems(ctx context.Context) ([]models.Item, error) {
	sorts := []map[string]interface{}{
		{"property": propSubject, "direction": "ascending"},
		{"property": propQuestion, "direction": "ascending"},
	}
	pages, err := s.client.QueryDatabase(ctx, s.quizDB, nil, sorts)
	if err != nil {
		return nil, err
	}
	items := make([]models.Item, 0, len(pages))
	for _, page := range pages {
		items = append(items, pageToItem(page))
	}
	return items, nil
}

// Item returns a single quiz page as an item.
func (s *Store) Item(ctx context.Context, id string) (*models.Item, error) {
	page, err := s.client.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	item := pageToItem(*page)
	return &item, nil
}

// SaveItem writes the review state of an item back to its quiz page.
func (s *Store) SaveItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		page, err := s.client.CreatePage(ctx, s.quizDB, itemProperties(item, true))
		if err != nil {
			return err
		}
		item.ID = page.ID
		return nil
	}
	return s.client.UpdatePage(ctx, item.ID, itemProperties(item, false))
}

// UnprocessedEvents returns review-log pages not yet marked processed,
// ordered chronologically. Events with malformed quality values are passed
// through as-is so the workflow can reject them individually.
func (s *Store) UnprocessedEvents(ctx context.Context) ([]models.ReviewEvent, error) {
	filter := map[string]interface{}{
		"property": propEventProcessed,
		"checkbox": map[string]interface{}{"equals": false},
	}
	sorts := []map[string]interface{}{
		{"property": propEventOccurred, "direction": "ascending"},
	}
	pages, err := s.client.QueryDatabase(ctx, s.eventsDB, filter, sorts)
	if err != nil {
		return nil, err
	}

	events := make([]models.ReviewEvent, 0, len(pages))
	for _, page := range pages {
		props := page.Properties
		ev := models.ReviewEvent{
			ID:        page.ID,
			ItemID:    props[propEventQuiz].FirstRelationID(),
			Processed: props[propEventProcessed].CheckboxValue(),
		}
		raw := props[propEventResult].SelectName()
		if q, err := models.ParseQuality(raw); err == nil {
			ev.Quality = q
		} else {
			ev.Quality = models.Quality(raw)
		}
		if at, ok := props[propEventOccurred].DateStart(); ok {
			ev.OccurredAt = at
		}
		events = append(events, ev)
	}
	return events, nil
}

// AppendEvent creates a new review-log page and assigns its page id to the
// event.
func (s *Store) AppendEvent(ctx context.Context, event *models.ReviewEvent) error {
	props := map[string]Property{
		propEventName:      titleProp(fmt.Sprintf("Review %s", event.OccurredAt.Format("2006-01-02 15:04"))),
		propEventQuiz:      relationProp([]string{event.ItemID}),
		propEventResult:    selectProp(string(event.Quality)),
		propEventOccurred:  dateTimeProp(event.OccurredAt),
		propEventProcessed: checkboxProp(false),
	}
	page, err := s.client.CreatePage(ctx, s.eventsDB, props)
	if err != nil {
		return err
	}
	event.ID = page.ID
	return nil
}

// MarkProcessed flips the processed checkbox on a review-log page.
func (s *Store) MarkProcessed(ctx context.Context, eventID string) error {
	return s.client.UpdatePage(ctx, eventID, map[string]Property{
		propEventProcessed: checkboxProp(true),
	})
}

// SavePlan creates a study-plan page referencing the assigned quiz pages.
func (s *Store) SavePlan(ctx context.Context, plan *models.DayPlan) error {
	title := fmt.Sprintf("Study plan - %s", plan.Date.Format(dateLayout))
	props := map[string]Property{
		propPlanName:      titleProp(title),
		propPlanDate:      dateProp(plan.Date),
		propPlanSubjects:  multiSelectProp(plan.Subjects()),
		propPlanShortfall: checkboxProp(plan.Shortfall),
		propPlanQuizzes:   relationProp(plan.ItemIDs()),
	}
	_, err := s.client.CreatePage(ctx, s.plansDB, props)
	return err
}

func pageToItem(page Page) models.Item {
	props := page.Properties
	item := models.Item{
		ID:           page.ID,
		Subject:      props[propSubject].SelectName(),
		Question:     props[propQuestion].Text(),
		Answer:       props[propAnswer].Text(),
		Repetitions:  int(props[propRepetitions].NumberValue(0)),
		EaseFactor:   props[propEaseFactor].NumberValue(2.5),
		IntervalDays: int(props[propInterval].NumberValue(0)),
	}
	if due, ok := props[propNextReview].DateStart(); ok {
		item.DueDate = due
	}
	if last, ok := props[propLastReviewed].DateStart(); ok {
		item.LastReviewedAt = &last
	}
	return item
}

func itemProperties(item *models.Item, create bool) map[string]Property {
	props := map[string]Property{
		propRepetitions: numberProp(float64(item.Repetitions)),
		propEaseFactor:  numberProp(item.EaseFactor),
		propInterval:    numberProp(float64(item.IntervalDays)),
		propNextReview:  dateProp(item.DueDate),
	}
	if item.LastReviewedAt != nil {
		props[propLastReviewed] = dateTimeProp(*item.LastReviewedAt)
	}
	if create {
		props[propQuestion] = titleProp(item.Question)
		props[propSubject] = selectProp(item.Subject)
		if item.Answer != "" {
			props[propAnswer] = richTextProp(item.Answer)
		}
	}
	return props
}
