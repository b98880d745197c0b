/*
Package relay pumps a producer process's standard output into a bounded,
ordered queue that an HTTP handler drains.

# Overview

A Relay owns exactly one producer and one Channel. A single pump goroutine
reads the producer's stdout in fixed-size blocks (8 KiB by default) and
enqueues each non-empty read as a Chunk. The HTTP side is the only consumer.

	producer stdout --read--> pump --Send--> Channel (cap 32) --Chunks()--> handler

# Backpressure

Send blocks while the queue is full, so a slow client throttles the pump
and, through the pipe, the producer. Nothing is dropped.

# Termination

The channel is closed exactly once, by the pump, in one of three ways:

  - end of file and a clean exit: the queue is closed with no error chunk
    (state Completed)
  - a read error or a non-zero exit: one terminal error chunk is enqueued,
    then the queue is closed (state Failed)
  - the consumer called Abandon: Send fails with ErrConsumerGone, the pump
    stops reading, releases the pipe and reaps the producer (state Abandoned)

When Config.TerminateOnAbandon is set the producer is also sent SIGTERM as
soon as the consumer abandons, so a pump blocked in Read wakes promptly.
Otherwise the producer keeps running until its next write fails on the
closed pipe.
*/
package relay
