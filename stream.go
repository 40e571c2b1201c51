package agent

// AnswerStream is an iterator over events emitted during a streaming
// pipeline run.
//
//	stream := pipeline.RunStream(ctx, input)
//	for stream.Next() {
//	    switch e := stream.Current().(type) {
//	    case *agent.DeltaEvent:
//	        fmt.Print(e.Delta)
//	    case *agent.ResultEvent:
//	        // final text in e.Text
//	    }
//	}
//
// Stage failures do not surface through Err; they arrive as a one-shot
// error message (DeltaEvent) and an error-flagged ResultEvent.
type AnswerStream struct {
	events  chan Event
	current Event
	done    bool
}

func newAnswerStream(buffer int) *AnswerStream {
	return &AnswerStream{events: make(chan Event, buffer)}
}

// Next advances to the next event. Returns false when the run has finished.
func (s *AnswerStream) Next() bool {
	if s.done {
		return false
	}
	event, ok := <-s.events
	if !ok {
		s.done = true
		return false
	}
	s.current = event
	return true
}

// Current returns the most recent event returned by Next.
func (s *AnswerStream) Current() Event { return s.current }

// emit delivers an event to the consumer. Producer-side.
func (s *AnswerStream) emit(event Event) { s.events <- event }

// finish closes the stream. Producer-side, called exactly once.
func (s *AnswerStream) finish() { close(s.events) }
