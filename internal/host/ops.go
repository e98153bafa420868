package host

// Operation names of the host call vocabulary. Each maps onto one Scene method.
const (
	OpCreatePrimitive = "create_primitive"
	OpAddModifier     = "add_modifier"
	OpShadeSmooth     = "shade_smooth"
	OpSetLocation     = "set_location"
	OpRemoveObject    = "remove_object"
	OpNewMaterial     = "new_material"
	OpAddShaderNode   = "add_shader_node"
	OpLinkShaderNodes = "link_shader_nodes"
	OpSetNodeInput    = "set_node_input"
	OpAssignMaterial  = "assign_material"
	OpAddCamera       = "add_camera"
	OpSetActiveCamera = "set_active_camera"
	OpAddLight        = "add_light"
	OpSetFrameRange   = "set_frame_range"
	OpInsertKeyframe  = "insert_keyframe"
	OpEnsureDir       = "ensure_dir"
	OpExportScene     = "export_scene"
)

// Modifier types.
const (
	ModifierSubsurf = "SUBSURF"
	ModifierBevel   = "BEVEL"
)

// Shader node types used by generated material graphs.
const (
	NodeOutput     = "ShaderNodeOutputMaterial"
	NodePrincipled = "ShaderNodeBsdfPrincipled"
)
