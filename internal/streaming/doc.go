/*
Package streaming writes a relay's output to an HTTP response.

# Overview

A relay hands over producer output as a sequence of chunks. Deliver drains that
sequence into an http.ResponseWriter, one write and one flush per chunk, so the
client receives audio as soon as the producer emits it.

# Header Commit

Nothing is written until the first message arrives:

  - a data chunk commits 200 with the caller's headers and starts the body
  - a closed source with no data commits 200 with an empty body
  - an error commits nothing; Deliver returns it with Result.Committed false
    so the handler can still send a 500

Once committed, an error chunk ends delivery and is returned with
Result.Committed true. The status is already sent, so the caller aborts the
connection (panic(http.ErrAbortHandler)) to make the failure visible.

# Client Disappearance

A canceled request context, a failed write, or a write that exceeds
WriteTimeout all mean the client is gone. Deliver then calls Abandon on the
source, which lets the relay stop the producer, and returns an error that
matches ErrClientGone or ErrWriteTimeout with errors.Is.

	res, err := streaming.Deliver(r.Context(), w, rl, streaming.AudioHeaders, streaming.DefaultTimeoutWriterConfig())
	switch {
	case err == nil:
	case !res.Committed:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, streaming.ErrClientGone):
		logging.Debug("client left after %d bytes", res.Bytes)
	}

# Write Deadlines

TimeoutWriter sets a write deadline through http.ResponseController before
each write. Writers that do not support deadlines, such as
httptest.ResponseRecorder, are written to without one. Middleware wrapping
the response writer must implement Unwrap for deadlines and flushing to reach
the connection.
*/
package streaming
