package store

// RepairKind names the fix applied to a malformed session
type RepairKind string

const (
	RepairNone                    RepairKind = ""
	RepairRestoredClarification   RepairKind = "restored_clarification_state"
	RepairDroppedClarification    RepairKind = "dropped_clarification_state"
	RepairRestoredDialogueHistory RepairKind = "restored_dialogue_history"
)

// Repair returns a structurally valid copy of the session together with the
// repairs that were needed. The input is never modified.
//
// A clarification session that already recorded turns but lost its state gets
// the default "awaiting" state back. A suggestion session never carries
// clarification state.
func Repair(s *SearchSession) (*SearchSession, []RepairKind) {
	if s == nil {
		return nil, nil
	}

	var repairs []RepairKind
	out := s

	ensureCopy := func() {
		if out == s {
			out = s.Clone()
		}
	}

	if s.DialogueHistory == nil {
		ensureCopy()
		out.DialogueHistory = []string{}
		repairs = append(repairs, RepairRestoredDialogueHistory)
	}

	switch s.Strategy {
	case StrategyClarification:
		if s.ClarificationState == nil && s.Stats.ConversationTurns > 0 {
			ensureCopy()
			out.ClarificationState = &ClarificationState{IsAwaitingClarification: true}
			repairs = append(repairs, RepairRestoredClarification)
		}
	case StrategySuggestion:
		if s.ClarificationState != nil {
			ensureCopy()
			out.ClarificationState = nil
			repairs = append(repairs, RepairDroppedClarification)
		}
	}

	return out, repairs
}
