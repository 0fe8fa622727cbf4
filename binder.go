package nodemat

// Rules decide which loaded meshes get which materials.
type Rules struct {
	// TargetName is matched exactly against mesh node names; matches get
	// Target regardless of their authored material.
	TargetName string
	Target     *Material

	// Override, when set, goes to every other mesh. This is the "one shared
	// material for the whole model" setup.
	Override *Material

	// Factory supplies preset materials for meshes whose authored material
	// name is a preset key. Other meshes are left alone.
	Factory *Factory
}

type BindReason int

const (
	BindTarget BindReason = iota + 1
	BindOverride
	BindPreset
)

func (r BindReason) String() string {
	switch r {
	case BindTarget:
		return "target"
	case BindOverride:
		return "override"
	case BindPreset:
		return "preset"
	default:
		return "unknown"
	}
}

// Binding is one pending material assignment.
type Binding struct {
	Node     *Node
	Material *Material
	Reason   BindReason
}

func authoredName(n *Node) string {
	if n.Authored != nil {
		return n.Authored.Name
	}
	if n.Material != nil {
		return n.Material.Name
	}
	return ""
}

// Bind computes material assignments for every mesh under root without
// touching the tree. Meshes that match no rule produce no binding.
func Bind(root *Node, rules Rules) []Binding {
	var out []Binding
	for _, n := range root.Meshes() {
		switch {
		case rules.Target != nil && rules.TargetName != "" && n.Name == rules.TargetName:
			out = append(out, Binding{n, rules.Target, BindTarget})
		case rules.Override != nil:
			out = append(out, Binding{n, rules.Override, BindOverride})
		case rules.Factory != nil && rules.Factory.Presets().Has(authoredName(n)):
			out = append(out, Binding{n, rules.Factory.Preset(authoredName(n)), BindPreset})
		}
	}
	return out
}

// Apply performs the assignments.
func Apply(bindings []Binding) {
	for _, b := range bindings {
		b.Node.Material = b.Material
	}
}

// Rebind restores authored materials under root and binds again.
func Rebind(root *Node, rules Rules) []Binding {
	for _, n := range root.Meshes() {
		if n.Authored != nil {
			n.Material = n.Authored
		}
	}
	bindings := Bind(root, rules)
	Apply(bindings)
	return bindings
}
