// Package parser reads rule files written as YAML rule trees and builds
// unresolved ASTs.
//
// A rule file is a mapping with a "rules" list. Each entry is keyed by its
// kind:
//
//	rules:
//	  - global: limit
//	    value: 100
//	  - constraint: legsAboveLimit
//	    context: Trade
//	    condition:
//	      exists: legs
//	      as: leg
//	      has: {gt: [leg.amount, limit]}
//	  - action: close
//	    context: Trade
//	    do:
//	      - set: status
//	        to: Status.CLOSED
//
// Plain strings are dotted paths. Numbers, booleans, null and unquoted
// dates are literals; text literals are written {string: ...}. Mappings
// are identified by their first key.
//
// The parser only checks structure. Names are bound by the resolver.
package parser
