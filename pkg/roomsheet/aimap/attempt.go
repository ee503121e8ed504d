package aimap

import (
	"errors"
	"strings"

	"google.golang.org/genai"
)

// errClass buckets a failed generation attempt by how the protocol reacts
// to it.
type errClass int

const (
	// classRateLimited is a retryable quota signal (bounded backoff).
	classRateLimited errClass = iota
	// classModelUnavailable means the requested model is gone; move on to
	// the alternate models.
	classModelUnavailable
	// classFatal covers everything else, including malformed responses.
	classFatal
)

// phase is where the attempt loop currently is.
type phase int

const (
	phasePrimary phase = iota
	phaseFallback
)

// action tells the driver what to do before the next attempt.
type action int

const (
	// actionWait backs off for the retry interval, then retries the same
	// model.
	actionWait action = iota
	// actionProceed issues the next attempt immediately (next model).
	actionProceed
	// actionStop gives up; the mapper degrades to an empty mapping.
	actionStop
)

// attemptState tracks progress through the retry and model-fallback
// envelope. Transitions are pure so the bounds are testable without any
// network call.
type attemptState struct {
	phase    phase
	attempt  int // attempt number on the primary model, 1-based
	modelIdx int // index into the fallback model list
}

func initialState() attemptState {
	return attemptState{phase: phasePrimary, attempt: 1}
}

// model returns the model identifier the state currently targets.
func (s attemptState) model(primary string, fallbacks []string) string {
	if s.phase == phaseFallback && s.modelIdx < len(fallbacks) {
		return fallbacks[s.modelIdx]
	}
	return primary
}

// next decides the follow-up to a failed attempt. Rate limits retry the
// primary model up to maxAttempts with a wait in between; exhaustion or an
// unavailable model advances through the fallback list one model at a time;
// anything else stops immediately.
func (s attemptState) next(c errClass, maxAttempts, numFallbacks int) (action, attemptState) {
	switch s.phase {
	case phasePrimary:
		switch c {
		case classRateLimited:
			if s.attempt < maxAttempts {
				return actionWait, attemptState{phase: phasePrimary, attempt: s.attempt + 1}
			}
			return enterFallback(numFallbacks)
		case classModelUnavailable:
			return enterFallback(numFallbacks)
		default:
			return actionStop, s
		}

	default: // phaseFallback: one attempt per alternate, any failure moves on
		if s.modelIdx+1 < numFallbacks {
			return actionProceed, attemptState{phase: phaseFallback, modelIdx: s.modelIdx + 1}
		}
		return actionStop, s
	}
}

func enterFallback(numFallbacks int) (action, attemptState) {
	if numFallbacks == 0 {
		return actionStop, attemptState{}
	}
	return actionProceed, attemptState{phase: phaseFallback}
}

// classify buckets a generation error. The service surfaces rate limiting
// as HTTP 429/quota wording and a deprecated model as 404/not found; the
// message fallback covers transports that lose the typed error.
func classify(err error) errClass {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return classRateLimited
		case 404:
			return classModelUnavailable
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource_exhausted"):
		return classRateLimited
	case strings.Contains(msg, "404"),
		strings.Contains(msg, "not found"):
		return classModelUnavailable
	}
	return classFatal
}
