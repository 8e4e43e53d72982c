// Package secret resolves clearing-adapter endpoints and credentials that
// a tenant's ClearingAdapter row references rather than stores directly.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider), with EnvProvider backing
//     "secretref:env:<VAR>" against the process environment
//   - Resolving secret references embedded in a config or adapter-row
//     string value (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:env:CLEARING_SAMOS_CLIENT_CERT
//   - Inline use:  Bearer secretref:env:CLEARING_SAMOS_TOKEN
//
// An inline reference runs to the next whitespace character, so any
// text directly after it (such as "/pacs008") becomes part of the ref.
package secret
