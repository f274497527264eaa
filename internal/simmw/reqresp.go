package simmw

import "sync/atomic"

type envelope struct {
	id      int64
	payload interface{}
}

// RequestResponseChannel connects exactly one Client to exactly one
// Service (spec §6 abstracts routing away; this sim keeps it 1:1).
type RequestResponseChannel struct {
	requests  *Queue
	responses *Queue
	nextID    int64
}

// NewRequestResponseChannel builds a channel with the given queue depth
// on each side.
func NewRequestResponseChannel(depth int) (*RequestResponseChannel, error) {
	reqs, err := NewQueue(depth)
	if err != nil {
		return nil, err
	}
	resps, err := NewQueue(depth)
	if err != nil {
		return nil, err
	}
	return &RequestResponseChannel{requests: reqs, responses: resps}, nil
}

// Client implements interfaces.Client.
type Client struct{ ch *RequestResponseChannel }

// NewClient returns the requesting side of ch.
func NewClient(ch *RequestResponseChannel) *Client { return &Client{ch: ch} }

// EventFD implements waitset.Signaller.
func (c *Client) EventFD() int { return c.ch.responses.EventFD() }

// SendRequest issues req and returns its request id.
func (c *Client) SendRequest(req interface{}) (int64, error) {
	id := atomic.AddInt64(&c.ch.nextID, 1)
	if err := c.ch.requests.Push(envelope{id: id, payload: req}); err != nil {
		return 0, err
	}
	return id, nil
}

// TakeResponse implements interfaces.Client.
func (c *Client) TakeResponse(dst interface{}) (bool, int64, error) {
	v, ok := c.ch.responses.Take()
	if !ok {
		return false, 0, nil
	}
	env := v.(envelope)
	if err := assign(dst, env.payload); err != nil {
		return false, 0, err
	}
	return true, env.id, nil
}

// Service implements interfaces.Service.
type Service struct{ ch *RequestResponseChannel }

// NewService returns the responding side of ch.
func NewService(ch *RequestResponseChannel) *Service { return &Service{ch: ch} }

// EventFD implements waitset.Signaller.
func (s *Service) EventFD() int { return s.ch.requests.EventFD() }

// TakeRequest implements interfaces.Service.
func (s *Service) TakeRequest(dst interface{}) (bool, int64, error) {
	v, ok := s.ch.requests.Take()
	if !ok {
		return false, 0, nil
	}
	env := v.(envelope)
	if err := assign(dst, env.payload); err != nil {
		return false, 0, err
	}
	return true, env.id, nil
}

// SendResponse implements interfaces.Service.
func (s *Service) SendResponse(requestID int64, resp interface{}) error {
	return s.ch.responses.Push(envelope{id: requestID, payload: resp})
}
