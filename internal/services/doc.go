// Package services holds the shared error taxonomy for external-tool and
// codec failures. Stage boundaries convert these errors into outcomes; they
// never cross the scheduler.
package services
