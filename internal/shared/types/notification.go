package types

// Notification names a user-visible alert raised by the media layer
type Notification struct {
	Name string
	Args map[string]string
}

const (
	NotifyNoPlugin          = "NoPlugin"
	NotifyMediaPluginFailed = "MediaPluginFailed"
)

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}
