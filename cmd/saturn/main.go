// Saturn resolves business rules written in a controlled natural language
// against a business model and operator catalogues.
//
// Every name in a rule (attributes, elements, enumeration literals,
// variables, parameters and operators) is bound to what it denotes, and
// anything that cannot be bound is reported with its location.
//
// Usage:
//
//	# Resolve the rule files named in the configuration
//	saturn resolve --config saturn.yaml
//
//	# Resolve specific files and fail on any diagnostic
//	saturn resolve --fail-on-error rules/trade.yaml
//
//	# Check rule files in CI
//	saturn lint rules/
//
//	# Re-resolve rules whenever they change
//	saturn watch --config saturn.yaml
//
//	# Resolve rules from a git repository, polling it for new commits
//	SATURN_RULES_GIT_ENABLED=true SATURN_RULES_GIT_REPOSITORY=https://git.example.com/rules.git \
//	  saturn watch --config saturn.yaml
//
//	# Show recent runs
//	saturn history --file rules/trade.yaml
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
