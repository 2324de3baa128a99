package math

func TransformCreate() *Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func TransformFromPosition(position Vec3) *Transform {
	return TransformFromPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	t.Local = NewMat4Identity()
	return t
}

// TransformFromMatrix creates a transform whose local matrix is fixed to m.
// Position/rotation/scale setters switch it back to composed mode.
func TransformFromMatrix(m Mat4) *Transform {
	t := TransformCreate()
	t.Local = m
	t.HasMatrix = true
	t.IsDirty = false
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.markDirty()
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.markDirty()
}

func (t *Transform) markDirty() {
	t.IsDirty = true
	t.HasMatrix = false
}

// GetLocal returns scale, then rotation, then translation.
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.IsDirty && !t.HasMatrix {
		s := NewMat4Scale(t.Scale)
		r := t.Rotation.ToMat4()
		t.Local = s.Mul(r).Mul(NewMat4Translation(t.Position))
		t.IsDirty = false
	}
	return t.Local
}

// GetWorld returns the local matrix followed by every parent's.
func (t *Transform) GetWorld() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	l := t.GetLocal()
	if t.Parent != nil {
		return l.Mul(t.Parent.GetWorld())
	}
	return l
}
