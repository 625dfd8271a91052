package mq

import "errors"

// Ошибки очереди.
var (
	// ErrNoChannel — канал не открыт (соединение разорвано или закрыто).
	ErrNoChannel = errors.New("no channel available")

	// ErrClosed — соединение закрыто через Close.
	ErrClosed = errors.New("connection closed")

	// ErrUnknownMessageType — для типа сообщения нет обработчика.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrInvalidReplyTo — reply_to совпадает с routing key запросов:
	// результат вернулся бы в очередь compile.requests.
	ErrInvalidReplyTo = errors.New("reply_to must not route to compile.requests")

	// ErrPermanent — повторная обработка сообщения не поможет.
	// Такие сообщения отправляются в DLQ без requeue.
	ErrPermanent = errors.New("permanent failure")
)

// permanentError помечает ошибку как неисправимую.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() []error { return []error{ErrPermanent, e.err} }

// Permanent оборачивает ошибку обработчика: сообщение уйдёт в DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
