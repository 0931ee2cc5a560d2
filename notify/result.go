package notify

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(msg string) *Notification {
	return &Notification{Level: LevelSuccess, Message: msg}
}

func Failure(msg string) *Notification {
	return &Notification{Level: LevelError, Message: msg}
}

type Reason int

const (
	ReasonOK Reason = iota
	// ReasonValidation: input rejected before any network call.
	ReasonValidation
	// ReasonNotFound: the requested record or account does not exist.
	ReasonNotFound
	// ReasonMismatch: credentials did not match.
	ReasonMismatch
	// ReasonExternal: the hospital API failed or refused the call.
	ReasonExternal
	// ReasonInternal: a bug or infrastructure fault on our side.
	ReasonInternal
	// ReasonNotMounted: the action targets a view that is not open.
	ReasonNotMounted
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonValidation:
		return "validation"
	case ReasonNotFound:
		return "not_found"
	case ReasonMismatch:
		return "mismatch"
	case ReasonExternal:
		return "external"
	case ReasonInternal:
		return "internal"
	case ReasonNotMounted:
		return "not_mounted"
	}
	return "unknown"
}

// Result is what every user-facing operation returns. Externally caused
// failures always carry an error Notice; Internal failures carry only Err.
type Result struct {
	Reason   Reason
	Notice   *Notification
	Redirect string
	Fields   map[string]string
	Err      error
}

func (r Result) OK() bool {
	return r.Reason == ReasonOK
}

func Done(msg string) Result {
	return Result{Reason: ReasonOK, Notice: Success(msg)}
}

func Quiet() Result {
	return Result{Reason: ReasonOK}
}

func Invalid(fields map[string]string) Result {
	return Result{Reason: ReasonValidation, Fields: fields}
}

func Fail(reason Reason, msg string, err error) Result {
	return Result{Reason: reason, Notice: Failure(msg), Err: err}
}

func Internal(err error) Result {
	return Result{Reason: ReasonInternal, Err: err}
}

func NotMounted(path string) Result {
	return Result{Reason: ReasonNotMounted, Redirect: path}
}
