// Package deferred models values that are not known when the blueprint is
// built: parameter-store lookups, Secrets Manager references and strings
// assembled from either. Values carry enough structure to be rendered as
// platform tokens, which keeps the builder free of any network access.
package deferred
