package domain

// ExamDateCase is the ten-way classification of a candidate's exam-date
// situation. The numbering matches the support playbook.
type ExamDateCase int

const (
	// CasAwaitingProposal: no exam date yet, nothing proposed, window open.
	CasAwaitingProposal ExamDateCase = 1
	// CasChoicePending: dates were proposed, the candidate has not chosen.
	CasChoicePending ExamDateCase = 2
	// CasRefused: the dossier was refused by the regulatory body.
	CasRefused ExamDateCase = 3
	// CasScheduledOpen: exam date set in the future, registration still open.
	CasScheduledOpen ExamDateCase = 4
	// CasScheduledLocked: exam date set in the future, registration closed.
	CasScheduledLocked ExamDateCase = 5
	// CasDeadlineMissed: no exam date and the registration window has closed.
	CasDeadlineMissed ExamDateCase = 6
	// CasAwaitingResults: the exam date has passed, results not yet published.
	CasAwaitingResults ExamDateCase = 7
	// CasResultsAvailable: exam results are published.
	CasResultsAvailable ExamDateCase = 8
	// CasConvocationReceived: the official convocation has been received.
	CasConvocationReceived ExamDateCase = 9
	// CasForceMajeure: a force-majeure reschedule is in progress.
	CasForceMajeure ExamDateCase = 10
)

// examCaseInput groups the derived facts the classifier needs. Keeping the
// dependency set explicit makes the decision tree testable in isolation.
type examCaseInput struct {
	Evalbox       string
	ExamDate      Date
	ExamPassed    bool
	ExamFuture    bool
	CloturePassed bool
	DatesProposed bool
	ForceMajeure  bool
}

// determineExamDateCase is a strict, total, order-sensitive decision tree:
// for any input it yields exactly one case. Refusal (3) and convocation (9)
// are checked first so they win over the scheduling cases 4/5/6 when their
// preconditions overlap; a force-majeure reschedule (10) outranks the
// scheduling cases for the same reason. The final fallthrough is case 1.
func determineExamDateCase(in examCaseInput) ExamDateCase {
	switch {
	case in.Evalbox == EvalboxRefuseCMA:
		return CasRefused
	case in.Evalbox == EvalboxConvocRecue:
		return CasConvocationReceived
	case in.ForceMajeure && in.ExamDate.Known:
		return CasForceMajeure
	case in.Evalbox == EvalboxResultatsDispo:
		return CasResultsAvailable
	case in.ExamPassed:
		return CasAwaitingResults
	case in.ExamFuture && in.CloturePassed:
		return CasScheduledLocked
	case in.ExamFuture:
		return CasScheduledOpen
	case in.CloturePassed:
		return CasDeadlineMissed
	case in.DatesProposed:
		return CasChoicePending
	default:
		return CasAwaitingProposal
	}
}

// DetermineExamDateCase classifies the exam-date situation from raw facts.
func DetermineExamDateCase(evalbox string, examDate Date, examPassed, examFuture, cloturePassed, datesProposed, forceMajeure bool) ExamDateCase {
	return determineExamDateCase(examCaseInput{
		Evalbox:       evalbox,
		ExamDate:      examDate,
		ExamPassed:    examPassed,
		ExamFuture:    examFuture,
		CloturePassed: cloturePassed,
		DatesProposed: datesProposed,
		ForceMajeure:  forceMajeure,
	})
}

// validatedStatuses are the Evalbox stages after which the regulatory body
// considers the registration final.
var validatedStatuses = map[string]bool{
	EvalboxValideCMA:   true,
	EvalboxConvocRecue: true,
}

// IsValidatedStatus reports whether the Evalbox status belongs to the
// "already validated" set used by the B1 blocking rule.
func IsValidatedStatus(evalbox string) bool {
	return validatedStatuses[evalbox]
}

// CanModifyExamDate implements rule B1: once the dossier is validated and
// the registration window has closed, the exam date is locked.
func CanModifyExamDate(evalbox string, cloturePassed bool) bool {
	return !(IsValidatedStatus(evalbox) && cloturePassed)
}
