/*
Package connectivity tracks whether the hosted application is reachable and
decides when to swap between remote content and the local offline view.

# States

	Online --[main-frame load failure]--> Offline --[retry / remote load]--> Online

Transitions are edge-triggered: a signal that would not change the state is a
no-op, so repeated failures never reload the offline page and a
failure-retry-failure cycle cannot thrash. Aborted navigations
(CodeAborted, CodeWebKitCancelled) and sub-frame failures are ignored.

Every method returns the Action the window controller should perform.

# Prober

While Offline the session runs a Prober, which sends paced HEAD requests to
the application URL and reports the first answer so the session can issue a
retry on the user's behalf.
*/
package connectivity
