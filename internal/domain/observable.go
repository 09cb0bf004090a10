package domain

type subscriber[E any] struct {
	id int
	fn func(E)
}

// Observable delivers events to subscribers in subscription order. It is not
// safe for concurrent use; rooms only touch it from their own loop.
type Observable[E any] struct {
	subs   []subscriber[E]
	lastId int
}

// Subscribe registers fn and returns a function removing it. Calling the
// returned function more than once is a no-op.
func (o *Observable[E]) Subscribe(fn func(E)) func() {
	o.lastId++
	id := o.lastId
	o.subs = append(o.subs, subscriber[E]{id: id, fn: fn})

	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

func (o *Observable[E]) Subscribers() int {
	return len(o.subs)
}

func (o *Observable[E]) publish(e E) {
	subs := make([]subscriber[E], len(o.subs))
	copy(subs, o.subs)

	for _, s := range subs {
		s.fn(e)
	}
}
