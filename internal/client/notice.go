package client

// Notice variants, mirrored by the presentation layer's toast styles.
const (
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeDanger  = "danger"
)

// Notice is a transient user-facing notification.
type Notice struct {
	Message string
	Variant string
}

// Notifier receives transient notices. A nil Notifier drops them.
type Notifier func(Notice)

func (n Notifier) post(message, variant string) {
	if n != nil {
		n(Notice{Message: message, Variant: variant})
	}
}
