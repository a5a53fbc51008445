// internal/matching/intention.go

package matching

import (
	"fmt"
	"math"
)

// allowedTimelines lists the timelines that are consistent with each
// intention.
var allowedTimelines = map[Intention]map[Timeline]bool{
	IntentionCasual:       {TimelineImmediate: true, TimelineNoRush: true, TimelineUnsure: true},
	IntentionDating:       {TimelineWithinMonths: true, TimelineWithinYear: true, TimelineNoRush: true, TimelineUnsure: true},
	IntentionRelationship: {TimelineWithinMonths: true, TimelineWithinYear: true, TimelineNoRush: true},
	IntentionSerious:      {TimelineImmediate: true, TimelineWithinMonths: true, TimelineWithinYear: true},
	IntentionMarriage:     {TimelineImmediate: true, TimelineWithinMonths: true, TimelineWithinYear: true},
}

var commitmentMatrix = map[CommitmentPattern]map[CommitmentPattern]float64{
	PatternSerialMonogamist: {PatternSerialMonogamist: 0.9, PatternCasualDater: 0.3, PatternLongTermSeeker: 0.8, PatternMixed: 0.6},
	PatternCasualDater:      {PatternSerialMonogamist: 0.3, PatternCasualDater: 0.9, PatternLongTermSeeker: 0.2, PatternMixed: 0.6},
	PatternLongTermSeeker:   {PatternSerialMonogamist: 0.8, PatternCasualDater: 0.2, PatternLongTermSeeker: 1.0, PatternMixed: 0.5},
	PatternMixed:            {PatternSerialMonogamist: 0.6, PatternCasualDater: 0.6, PatternLongTermSeeker: 0.5, PatternMixed: 0.7},
}

const (
	intentionWeight  = 0.4
	timelineWeight   = 0.3
	historyWeight    = 0.2
	attachmentWeight = 0.1
)

// IntentionAnalysis is the result of AnalyzeIntention. Scores are 0-100.
type IntentionAnalysis struct {
	Score           int              `json:"score"`
	IntentionScore  int              `json:"intention_score"`
	TimelineScore   int              `json:"timeline_score"`
	HistoryScore    int              `json:"history_score"`
	AttachmentBonus int              `json:"attachment_bonus"`
	Details         IntentionDetails `json:"details"`
}

type IntentionDetails struct {
	IntentionAlignment    string   `json:"intention_alignment"`
	TimelineCompatibility string   `json:"timeline_compatibility"`
	HistoryCompatibility  string   `json:"history_compatibility"`
	Recommendations       []string `json:"recommendations,omitempty"`
}

// AnalyzeIntention extends the basic intention comparison with timeline
// expectations, dating history and an attachment/commitment bonus.
func AnalyzeIntention(user, candidate *Profile) (IntentionAnalysis, error) {
	if user == nil || candidate == nil {
		return IntentionAnalysis{}, fmt.Errorf("analyze intention: %w", ErrNilProfile)
	}

	intention := IntentionScore(user.RelationshipIntention, candidate.RelationshipIntention)
	timeline := TimelineScore(user, candidate)
	history := HistoryScore(user.DatingHistory, candidate.DatingHistory)
	bonus := AttachmentIntentionBonus(user, candidate)

	overall := intention*intentionWeight + timeline*timelineWeight +
		history*historyWeight + bonus*attachmentWeight

	return IntentionAnalysis{
		Score:           percent(overall),
		IntentionScore:  percent(intention),
		TimelineScore:   percent(timeline),
		HistoryScore:    percent(history),
		AttachmentBonus: percent(bonus),
		Details:         describeIntention(intention, timeline, history),
	}, nil
}

// TimelineScore compares how urgently each side wants a relationship, then
// boosts pairs whose timelines fit their own intentions and penalizes pairs
// where either does not.
func TimelineScore(user, candidate *Profile) float64 {
	u1 := user.TimelineExpectation.Urgency()
	u2 := candidate.TimelineExpectation.Urgency()
	if u1 == 0 || u2 == 0 {
		return neutralScore
	}

	score := 1 - math.Abs(float64(u1-u2))/4

	fit1, known1 := timelineFits(user)
	fit2, known2 := timelineFits(candidate)
	switch {
	case (known1 && !fit1) || (known2 && !fit2):
		score = math.Max(0, score-0.3)
	case known1 && known2 && fit1 && fit2:
		score = math.Min(1, score+0.2)
	}
	return score
}

// timelineFits reports whether the profile's timeline is allowed for its own
// intention. known is false when the intention is unset.
func timelineFits(p *Profile) (fits bool, known bool) {
	allowed, ok := allowedTimelines[p.RelationshipIntention]
	if !ok {
		return false, false
	}
	return allowed[p.TimelineExpectation], true
}

// HistoryScore blends commitment pattern, relationship count, longest
// relationship and recency comparisons over whichever are present on both
// sides.
func HistoryScore(a, b DatingHistory) float64 {
	var sum, weights float64

	if row, ok := commitmentMatrix[a.CommitmentPattern]; ok {
		if s, ok := row[b.CommitmentPattern]; ok {
			sum += s * 0.4
			weights += 0.4
		}
	}

	if a.RelationshipCount != nil && b.RelationshipCount != nil {
		d := math.Abs(float64(*a.RelationshipCount - *b.RelationshipCount))
		sum += math.Max(0, 1-d/10) * 0.2
		weights += 0.2
	}

	if a.LongestRelationshipMonths != nil && b.LongestRelationshipMonths != nil {
		lo := math.Min(float64(*a.LongestRelationshipMonths), float64(*b.LongestRelationshipMonths))
		hi := math.Max(float64(*a.LongestRelationshipMonths), float64(*b.LongestRelationshipMonths))
		ratio := 1.0
		if hi > 0 {
			ratio = math.Max(0, lo) / hi
		}
		sum += ratio * 0.3
		weights += 0.3
	}

	if a.MonthsSinceLast != nil && b.MonthsSinceLast != nil {
		d := math.Abs(float64(*a.MonthsSinceLast - *b.MonthsSinceLast))
		sum += math.Max(0, 1-d/24) * 0.1
		weights += 0.1
	}

	if weights == 0 {
		return neutralScore
	}
	return sum / weights
}

// AttachmentIntentionBonus starts from the attachment matrix and rewards
// secure partners in committed pairings and anxious partners matched with
// highly committed ones. It is 0 when either side lacks attachment or
// intention data.
func AttachmentIntentionBonus(user, candidate *Profile) float64 {
	base, ok := attachmentScore(user.AttachmentStyle, candidate.AttachmentStyle)
	l1 := user.RelationshipIntention.Rank()
	l2 := candidate.RelationshipIntention.Rank()
	if !ok || l1 == 0 || l2 == 0 {
		return 0
	}

	eitherSecure := user.AttachmentStyle == AttachmentSecure || candidate.AttachmentStyle == AttachmentSecure
	anxiousWithCommitted := (user.AttachmentStyle == AttachmentAnxious && l2 >= 4) ||
		(candidate.AttachmentStyle == AttachmentAnxious && l1 >= 4)

	switch {
	case eitherSecure && (l1 >= 3 || l2 >= 3):
		return math.Min(1, base+0.2)
	case anxiousWithCommitted:
		return math.Min(1, base+0.15)
	}
	return base
}

func describeIntention(intention, timeline, history float64) IntentionDetails {
	d := IntentionDetails{
		IntentionAlignment:    qualitative(intention, "significant difference", "some difference", "good alignment", "excellent alignment"),
		TimelineCompatibility: qualitative(timeline, "very different", "somewhat different", "compatible", "very similar"),
		HistoryCompatibility:  qualitative(history, "significant differences", "some differences", "good compatibility", "excellent compatibility"),
	}

	switch {
	case intention < 0.3:
		d.Recommendations = append(d.Recommendations, "You want very different things; talk openly about relationship goals before meeting.")
	case intention < 0.6:
		d.Recommendations = append(d.Recommendations, "Your relationship goals differ a little; check what each of you is looking for early on.")
	}
	switch {
	case timeline < 0.3:
		d.Recommendations = append(d.Recommendations, "Your timelines are far apart; discuss how fast you each want things to move.")
	case timeline < 0.6:
		d.Recommendations = append(d.Recommendations, "Your timelines differ somewhat; be patient and keep expectations explicit.")
	}
	switch {
	case history < 0.3:
		d.Recommendations = append(d.Recommendations, "Your dating histories are very different; share what past relationships taught you.")
	case history < 0.6:
		d.Recommendations = append(d.Recommendations, "Your dating histories differ in places; ask about what worked before.")
	}
	return d
}

// qualitative buckets a score: <0.3 low, <0.6 mid, >0.8 top, otherwise ok.
func qualitative(score float64, low, mid, ok, top string) string {
	switch {
	case score < 0.3:
		return low
	case score < 0.6:
		return mid
	case score > 0.8:
		return top
	}
	return ok
}
