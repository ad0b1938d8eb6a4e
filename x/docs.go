/*
Package x contains the extensions that together build the timed wallet
application.

Extensions implement common functionality (Handler, Decorator, Initializer
and query handlers) and are combined in the app package. The root of this
package holds the authentication abstraction shared by all of them, so that
a handler never depends on a concrete signature scheme.
*/
package x
