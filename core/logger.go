package core

// Logger logs messages locally and, depending on the implementation, reports
// them to an external error tracker.
//
// args may carry any extra context; an implementation can give some types
// special treatment (eg. attaching a logged-in user.User to a report).
type Logger interface {
	Enable(enabled bool)

	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
