package bytescan

// Offset adds delta to the value.
func Offset(delta int64) Transform {
	return func(_ *Description, v Address) Address {
		return v + Address(delta)
	}
}

// Deref replaces the value with the native pointer stored at it.
// Unreadable addresses resolve to 0.
func Deref() Transform {
	return func(d *Description, v Address) Address {
		p, _ := d.Memory().ReadPointer(v)
		return p
	}
}

// DerefUint32 replaces the value with the uint32 stored at it.
// Unreadable addresses resolve to 0.
func DerefUint32() Transform {
	return func(d *Description, v Address) Address {
		u, _ := d.Memory().ReadUint32(v)
		return Address(u)
	}
}

// Relative resolves an instruction with a 32-bit displacement relative to
// the next instruction, such as x86-64 RIP-relative operands and rel32
// jumps: the result is v + instrLen + disp, where disp is read at
// v + dispOffset. Unreadable displacements resolve to 0.
func Relative(dispOffset, instrLen int) Transform {
	return func(d *Description, v Address) Address {
		disp, ok := d.Memory().ReadInt32(v + Address(dispOffset))
		if !ok {
			return 0
		}
		return v + Address(instrLen) + Address(int64(disp))
	}
}

// RelativeAt resolves a native-width offset stored at v + fieldOffset and
// relative to the field itself.
func RelativeAt(fieldOffset int) Transform {
	return func(d *Description, v Address) Address {
		field := v + Address(fieldOffset)
		rel, ok := d.Memory().ReadPointer(field)
		if !ok {
			return 0
		}
		return field + rel
	}
}

// Rebase moves the value from one base address to another, e.g. from a
// mapped view back to a file offset or a module's preferred image base.
func Rebase(from, to Address) Transform {
	return func(_ *Description, v Address) Address {
		return v - from + to
	}
}
