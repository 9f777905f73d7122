package shared

import "fmt"

// SlotLockKey builds the key guarding a slot's admission critical section.
func SlotLockKey(date, clock string) string {
	return fmt.Sprintf("slot:%s:%s:lock", date, clock)
}
