package log

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AfterFunc run f once d has elapsed
type AfterFunc func(d time.Duration, f func())

// TimerAfter AfterFunc backed by time.AfterFunc
func TimerAfter(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Message operator visible message
type Message struct {
	Text   string    `json:"text"`
	Sticky bool      `json:"sticky"`
	Posted time.Time `json:"posted"`
}

// Banner single message slot shown to the operator.
// A message is dismissed after the timeout unless a newer one replaced it,
// sticky messages stay until dismissed.
type Banner struct {
	lock    sync.Mutex
	current *Message
	seq     uint64
	timeout time.Duration
	after   AfterFunc
	fields  logrus.Fields
}

func NewBanner(timeout time.Duration, after AfterFunc, fields logrus.Fields) *Banner {
	if after == nil {
		after = TimerAfter
	}
	return &Banner{
		timeout: timeout,
		after:   after,
		fields:  fields,
	}
}

// Post show text with the default timeout
func (b *Banner) Post(text string) {
	b.post(text, b.timeout)
}

// PostSticky show text until dismissed or replaced
func (b *Banner) PostSticky(text string) {
	b.post(text, 0)
}

func (b *Banner) post(text string, timeout time.Duration) {
	b.lock.Lock()
	b.seq++
	seq := b.seq
	b.current = &Message{
		Text:   text,
		Sticky: timeout <= 0,
		Posted: time.Now(),
	}
	b.lock.Unlock()

	logrus.WithFields(b.fields).Warn(text)
	if timeout <= 0 {
		return
	}
	b.after(timeout, func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		if b.seq == seq {
			b.current = nil
		}
	})
}

func (b *Banner) Dismiss() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.seq++
	b.current = nil
}

// Current message on display, nil when hidden
func (b *Banner) Current() *Message {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.current == nil {
		return nil
	}
	msg := *b.current
	return &msg
}
