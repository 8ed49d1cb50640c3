package readline

type keyCallbackMachine interface {
	registerInputCallback([]Key, KeybindingCallback)
	keyPressed(Key, Editor)
	shouldProcessLastPressedKey() bool
	reset()
}

type keyBinding struct {
	keys    []Key
	binding KeybindingCallback
}

// keyCallbackMachineImpl matches typed keys against registered sequences.
// A key that only starts a longer sequence is held until the sequence
// either completes or diverges.
type keyCallbackMachineImpl struct {
	bindings             []keyBinding
	pendingKeys          []Key
	shouldProcessThisKey bool
}

func newKeyCallbackMachine() keyCallbackMachine {
	return &keyCallbackMachineImpl{}
}

// registerInputCallback binds keys, replacing an earlier binding for the
// same sequence.
func (k *keyCallbackMachineImpl) registerInputCallback(keys []Key, callback KeybindingCallback) {
	if len(keys) == 0 {
		return
	}
	keys = append([]Key(nil), keys...)
	for i := range k.bindings {
		if sameKeys(k.bindings[i].keys, keys) {
			k.bindings[i].binding = callback
			return
		}
	}
	k.bindings = append(k.bindings, keyBinding{keys: keys, binding: callback})
}

func sameKeys(a, b []Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasKeyPrefix(keys, prefix []Key) bool {
	return len(keys) >= len(prefix) && sameKeys(keys[:len(prefix)], prefix)
}

func (k *keyCallbackMachineImpl) keyPressed(newKey Key, editor Editor) {
	k.pendingKeys = append(k.pendingKeys, newKey)

	var exact *keyBinding
	longer := false
	for i := range k.bindings {
		binding := &k.bindings[i]
		if !hasKeyPrefix(binding.keys, k.pendingKeys) {
			continue
		}
		if len(binding.keys) == len(k.pendingKeys) {
			exact = binding
		} else {
			longer = true
		}
	}

	if exact != nil {
		keys := k.pendingKeys
		k.pendingKeys = nil
		k.shouldProcessThisKey = exact.binding(keys, editor)
		return
	}

	if longer {
		k.shouldProcessThisKey = false
		return
	}

	if len(k.pendingKeys) == 1 {
		k.pendingKeys = nil
		k.shouldProcessThisKey = true
		return
	}

	// Insert any keys that were captured, then retry the last one alone.
	captured := k.pendingKeys[:len(k.pendingKeys)-1]
	k.pendingKeys = nil
	for _, key := range captured {
		if key.isPrintable(true) {
			editor.InsertChar(key.Rune())
		}
	}
	k.keyPressed(newKey, editor)
}

func (k *keyCallbackMachineImpl) shouldProcessLastPressedKey() bool {
	return k.shouldProcessThisKey
}

func (k *keyCallbackMachineImpl) reset() {
	k.pendingKeys = nil
	k.shouldProcessThisKey = false
}
