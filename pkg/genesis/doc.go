// Package genesis provides clients for the Genesis remote sandbox
// service: browser automation sessions and code interpreter sessions.
//
// Each client tracks at most one live session. Start creates a remote
// session and caches its ID; every subsequent call sends that ID
// unchanged until Stop releases it. Lifecycle misuse is reported with
// [SessionError] and [NoActiveSessionError]; failures from the remote
// service itself propagate untranslated.
//
// The service owns the actual sandboxes. Clients hold nothing but the
// session identifier, so a terminated process simply abandons its
// session to the service-side timeout.
package genesis
