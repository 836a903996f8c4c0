/*
Package cron provides a persistent task queue and a ticker that executes
queued messages once their execution time is reached.

A task is scheduled together with a set of conditions. When the task is
executed, those conditions are the only authentication available in the
context, which allows extensions to accept messages that can be issued by
the application itself only.
*/
package cron
