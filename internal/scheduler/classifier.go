package scheduler

import (
	"strings"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/utils"
)

// Classification is the result of inspecting one event title.
type Classification struct {
	IsClass     bool
	SubjectName string // empty when no name could be inferred
}

// Classifier decides whether a calendar event is a class and which subject it belongs to.
type Classifier interface {
	Classify(title string) Classification
}

// DefaultClassKeywords match English and French class titles.
var DefaultClassKeywords = []string{
	"cours", "course", "td", "tp", "amphi", "classe",
	"class", "lecture", "seminar", "lesson",
}

// KeywordClassifier flags titles containing any keyword, case-insensitively.
type KeywordClassifier struct {
	Keywords []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{Keywords: DefaultClassKeywords}
}

func (k *KeywordClassifier) Classify(title string) Classification {
	lower := strings.ToLower(title)
	for _, kw := range k.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return Classification{IsClass: true, SubjectName: inferSubjectName(title)}
		}
	}
	return Classification{}
}

// NopClassifier never classifies anything, disabling class hints.
type NopClassifier struct{}

func (NopClassifier) Classify(string) Classification { return Classification{} }

// inferSubjectName takes the first two words of a title.
// Single-word titles carry no usable name.
func inferSubjectName(title string) string {
	words := strings.Fields(title)
	if len(words) < 2 {
		return ""
	}
	return words[0] + " " + words[1]
}

// ClassifyEvents annotates each event and collects, per inferred subject
// name, the days on which a class occurs.
func ClassifyEvents(c Classifier, events []models.CalendarEvent, loc *time.Location) ([]models.CalendarEvent, map[string][]time.Time) {
	if c == nil {
		c = NopClassifier{}
	}
	out := make([]models.CalendarEvent, len(events))
	classDays := make(map[string][]time.Time)
	for i, e := range events {
		res := c.Classify(e.Title)
		e.IsClass = res.IsClass
		e.InferredSubject = res.SubjectName
		out[i] = e
		if res.IsClass && res.SubjectName != "" {
			day := utils.StartOfDay(e.Start.In(loc))
			classDays[res.SubjectName] = appendDay(classDays[res.SubjectName], day)
		}
	}
	return out, classDays
}

// PreferredDays maps each subject ID to the class days whose inferred name
// loosely matches the subject's name.
func PreferredDays(subjects []models.Subject, classDays map[string][]time.Time) map[string][]time.Time {
	preferred := make(map[string][]time.Time)
	for _, s := range subjects {
		for name, days := range classDays {
			if !namesMatch(s.Name, name) {
				continue
			}
			for _, d := range days {
				preferred[s.ID] = appendDay(preferred[s.ID], d)
			}
		}
	}
	return preferred
}

// namesMatch is case-insensitive containment in either direction.
func namesMatch(subjectName, inferred string) bool {
	a := strings.ToLower(strings.TrimSpace(subjectName))
	b := strings.ToLower(strings.TrimSpace(inferred))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func appendDay(days []time.Time, day time.Time) []time.Time {
	for _, d := range days {
		if d.Equal(day) {
			return days
		}
	}
	return append(days, day)
}
