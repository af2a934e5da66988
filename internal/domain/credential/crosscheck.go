package credential

import "botfleet/internal/domain/registry"

// CrossCheck compares an extracted phone number against the global
// registry to decide whether a registration may proceed.
//
// registryEntry is the result of looking the phone up in the global
// registry (nil if absent). localBotExists reports whether a bot row for
// this phone already exists on the target tenant even though no registry
// entry backs it — a state that should never occur in a healthy fleet and
// is surfaced as ResultInconsistentLocalBot rather than silently allowed
// through.
func CrossCheck(targetTenant string, registryEntry *registry.Entry, localBotExists bool) (CrossCheckResult, string) {
	if registryEntry == nil {
		if localBotExists {
			return ResultInconsistentLocalBot, ""
		}
		return ResultAvailable, ""
	}

	if registryEntry.Tenant == targetTenant {
		return ResultDuplicateOnThisTenant, ""
	}

	return ResultDuplicateOnOtherTenant, registryEntry.Tenant
}
