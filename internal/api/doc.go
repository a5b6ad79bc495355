// Package api exposes study sessions over HTTP for the browser front end.
// Each session is addressed by the bearer token issued when it is created;
// handlers run the session's controller under the registry lock and answer
// with the session view plus a user-facing notice.
package api
