// Package model holds the domain model that business rules are written
// against: packages of classes, enumerations and data types, plus the
// built-in primitives.
//
// A model is usually loaded from YAML:
//
//	name: trading
//	packages:
//	  - name: trading
//	    enumerations:
//	      - name: Status
//	        literals: [OPEN, CLOSED]
//	    classes:
//	      - name: Trade
//	        attributes:
//	          - {name: date, type: date}
//	          - {name: legs, type: Leg, many: true}
//	          - {name: status, type: Status}
//	      - name: Leg
//	        attributes:
//	          - {name: amount, type: number}
//
// Unqualified element names are indexed across packages. When two packages
// declare the same name, IsAmbiguous reports it and callers must use a
// qualified "pkg::Name" reference.
package model
