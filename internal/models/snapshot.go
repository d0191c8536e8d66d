package models

// TestSnapshot is the test content loaded for one exam session. It is never
// mutated once a session has it.
type TestSnapshot = PracticeTest

// DefaultPartDurationMinutes applies to parts the backend sends without a duration.
const DefaultPartDurationMinutes = 30

// SnapshotQuestion is a question in display order together with where it lives.
type SnapshotQuestion struct {
	Number        int               `json:"number"` // 1-based
	PartID        string            `json:"part_id,omitempty"`
	QuestionSetID string            `json:"question_set_id,omitempty"`
	Question      *PracticeQuestion `json:"question"`
}

// Questions flattens parts, their items and nested question sets into display
// order. Top-level items outside any part follow the parts. A question that
// appears twice is listed once.
func (t *PracticeTest) Questions() []SnapshotQuestion {
	if t == nil {
		return nil
	}

	var out []SnapshotQuestion
	seen := make(map[string]struct{})
	add := func(partID, setID string, q *PracticeQuestion) {
		if q == nil {
			return
		}
		if _, ok := seen[q.ID]; ok {
			return
		}
		seen[q.ID] = struct{}{}
		out = append(out, SnapshotQuestion{
			Number:        len(out) + 1,
			PartID:        partID,
			QuestionSetID: setID,
			Question:      q,
		})
	}
	walk := func(partID string, items []PracticeQuestionOrSetItem) {
		for i := range items {
			item := &items[i]
			if item.Question != nil {
				add(partID, "", item.Question)
			}
			if item.QuestionSet != nil {
				for j := range item.QuestionSet.Questions {
					add(partID, item.QuestionSet.ID, &item.QuestionSet.Questions[j])
				}
			}
		}
	}

	for i := range t.Parts {
		walk(t.Parts[i].ID, t.Parts[i].QuestionsAndQuestionSets)
	}
	walk("", t.QuestionAndQuestionSet)
	return out
}

// QuestionOrder maps question id to its 0-based display position.
func (t *PracticeTest) QuestionOrder() map[string]int {
	qs := t.Questions()
	order := make(map[string]int, len(qs))
	for i, q := range qs {
		order[q.Question.ID] = i
	}
	return order
}

// PartIDs returns the ids of the loaded parts in order.
func (t *PracticeTest) PartIDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.Parts))
	for _, p := range t.Parts {
		ids = append(ids, p.ID)
	}
	return ids
}

// DurationMinutes sums part durations, using DefaultPartDurationMinutes for
// parts that carry none.
func (t *PracticeTest) DurationMinutes() int {
	if t == nil {
		return 0
	}
	total := 0
	for _, p := range t.Parts {
		if p.DurationMinutes > 0 {
			total += p.DurationMinutes
		} else {
			total += DefaultPartDurationMinutes
		}
	}
	return total
}
