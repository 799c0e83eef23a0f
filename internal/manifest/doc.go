// Package manifest resolves and validates service deployment descriptors.
//
// A manifest root holds one directory per service plus global region
// defaults:
//
//	services/
//	  billing/
//	    manifest.yml     # base descriptor
//	    prod-us.yml      # service + region override
//	    app.conf.tmpl    # config template
//	environments/
//	  prod-us.yml        # defaults for every service in prod-us
//
// # Resolution
//
// Resolver.Resolve builds the manifest for one (service, region) pair in a
// fixed order:
//
//   - Load the base descriptor
//   - Fill implicit defaults computed from the manifest itself
//   - Resolve env secret placeholders (when a store is given)
//   - Merge the service region override
//   - Merge the global region defaults
//   - Stamp namespace and location from the region
//
// Override layers only fill gaps: the accumulated manifest always wins.
//
// # Validation
//
// Validator.Verify checks a resolved manifest: resource sanity, config
// shape, dependency and region cross-references, init containers and
// health checks. ValidateAll runs resolve and verify for every region a
// service declares.
package manifest
