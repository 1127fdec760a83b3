package core

// DiscardListener silently drops update notifications. It is the
// semantic equivalent of "no listener attached" and is useful for
// boards that are read directly rather than published.
type DiscardListener struct{}

func (DiscardListener) InstrumentUpdated(name string) {}

// ChannelListener forwards every notified instrument name into a
// channel. Sends block when the channel buffer is full, bounding the
// caller by the queue capacity. Sending on a closed channel panics;
// closing the channel while instruments are live is a programming
// error, not a recoverable runtime condition.
type ChannelListener struct {
	ch chan<- string
}

// NewChannelListener wraps the send side of a notification channel.
func NewChannelListener(ch chan<- string) ChannelListener {
	return ChannelListener{ch: ch}
}

func (c ChannelListener) InstrumentUpdated(name string) {
	c.ch <- name
}
