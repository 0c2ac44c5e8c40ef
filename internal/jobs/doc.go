// Package jobs implements background tasks that run independently of
// HTTP request handling.
//
// The only job today is the OverdueScanner, which periodically lists
// open loans past their due date and logs them for operators. Jobs own
// their own goroutine and shut down via Stop:
//
//	scanner := jobs.NewOverdueScanner(loanService, time.Hour)
//	scanner.Start()
//	defer scanner.Stop()
//
// Jobs log errors and keep running; a failed scan is retried on the
// next tick.
package jobs
