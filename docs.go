// auth0-kits provides a collection of related packages implementing the
// browser-side half of an OAuth2/OIDC integration with a single configured
// tenant: token exchange (oauth), session persistence (session), encrypted
// state round trips (state), expiry-driven renewal (renew), cross-frame
// session replication (crossstorage), management API access (management)
// and route-guard http handlers (callback).
//
// See README.md
package auth0kits
