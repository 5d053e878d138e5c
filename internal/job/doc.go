// Package job manages background job queuing, processing, and lifecycle.
// It provides mechanisms for asynchronous execution of slow operations
// like sending email, ensuring they don't block HTTP request handling and
// can recover from application restarts. It also runs the periodic
// scheduler that purges stale records and enqueues due-date reminders.
package job
