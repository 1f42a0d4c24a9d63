// Package mailer sends run outcome emails over SMTP. When no SMTP host is
// configured a noop implementation is returned so callers never branch on
// notification availability.
package mailer
