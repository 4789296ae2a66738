/*
Package policy decides what happens to every page transition and window-open
request raised by the hosted content.

# Decisions

	LoadInPlace   load in the primary window
	OpenExternal  hand to the OS default browser
	Block         swallow the request

# Rules

  - file: targets always load in place (the bundled offline page)
  - http/https targets on an allowed host load in place, others open externally
  - other schemes are blocked for window-open and handed out for will-navigate
  - window-open to the application's own host is redirected into the primary window

Scheme-relative targets are checked like https ones. Targets that cannot be
parsed, or carry neither scheme nor host, fail open for will-navigate and fail
closed for window-open.

ValidateExternal guards every hand-off to the OS: only absolute http and
https URLs pass.
*/
package policy
