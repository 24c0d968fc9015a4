package tools

import (
	"encoding/json"

	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/protocol"
)

// Catalog returns the tool definitions advertised over tools/list, in
// registration order.
func Catalog() []protocol.Tool {
	out := make([]protocol.Tool, len(catalog))
	copy(out, catalog)
	return out
}

var catalog = []protocol.Tool{
	{
		Name:        "create_component",
		Description: "Create a new component in SketchUp with positioning verification and directional control",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"type": {"type": "string", "description": "Component type (cube, cylinder, sphere, cone)", "default": "cube"},
				"position": {"type": "array", "items": {"type": "number"}, "description": "[X, Y, Z] coordinates interpreted per origin_mode", "default": [0, 0, 0]},
				"dimensions": {"type": "array", "items": {"type": "number"}, "description": "[width, height, depth] in SketchUp units; cylinders also accept [diameter, height]", "default": [1, 1, 1]},
				"direction": {"type": "string", "enum": ["up", "down", "forward", "back", "right", "left", "auto"], "description": "Extrusion direction", "default": "up"},
				"origin_mode": {"type": "string", "enum": ["center", "bottom_center", "top_center", "min_corner", "max_corner"], "description": "How to interpret position", "default": "center"}
			}
		}`),
	},
	{
		Name:        "delete_component",
		Description: "Delete a component by its entity ID",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Entity ID of the component to delete"}
			},
			"required": ["id"]
		}`),
	},
	{
		Name:        "transform_component",
		Description: "Transform a component's position, rotation, or scale",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Entity ID of the component to transform"},
				"position": {"type": "array", "items": {"type": "number"}, "description": "Target [X, Y, Z] for the component origin"},
				"rotation": {"type": "array", "items": {"type": "number"}, "description": "Euler angles in degrees around X, Y, Z"},
				"scale": {"description": "Uniform factor or per-axis [Sx, Sy, Sz] multipliers"}
			},
			"required": ["id"]
		}`),
	},
	{
		Name:        "get_selection",
		Description: "Get currently selected components in SketchUp",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
	},
	{
		Name:        "set_material",
		Description: "Set material for a component by its entity ID",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Entity ID of the component"},
				"material": {"type": "string", "description": "Material or color name to apply"}
			},
			"required": ["id", "material"]
		}`),
	},
	{
		Name:        "export_scene",
		Description: "Export the current SketchUp scene to a specified file format",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"format": {"type": "string", "description": "Export format such as skp, dae, obj, stl, png, jpg", "default": "skp"}
			}
		}`),
	},
	{
		Name:        "create_mortise_tenon",
		Description: "Create a mortise and tenon joint between two components",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"mortise_id": {"type": "string", "description": "Entity ID of the mortise component"},
				"tenon_id": {"type": "string", "description": "Entity ID of the tenon component"},
				"width": {"type": "number", "default": 1.0},
				"height": {"type": "number", "default": 1.0},
				"depth": {"type": "number", "default": 1.0},
				"offset_x": {"type": "number", "default": 0.0},
				"offset_y": {"type": "number", "default": 0.0},
				"offset_z": {"type": "number", "default": 0.0}
			},
			"required": ["mortise_id", "tenon_id"]
		}`),
	},
	{
		Name:        "create_dovetail",
		Description: "Create a dovetail joint between two components",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tail_id": {"type": "string", "description": "Entity ID of the tail component"},
				"pin_id": {"type": "string", "description": "Entity ID of the pin component"},
				"width": {"type": "number", "default": 1.0},
				"height": {"type": "number", "default": 1.0},
				"depth": {"type": "number", "default": 1.0},
				"angle": {"type": "number", "description": "Dovetail angle in degrees", "default": 15.0},
				"num_tails": {"type": "integer", "default": 3},
				"offset_x": {"type": "number", "default": 0.0},
				"offset_y": {"type": "number", "default": 0.0},
				"offset_z": {"type": "number", "default": 0.0}
			},
			"required": ["tail_id", "pin_id"]
		}`),
	},
	{
		Name:        "create_finger_joint",
		Description: "Create a finger joint (box joint) between two components",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"board1_id": {"type": "string", "description": "Entity ID of the first board"},
				"board2_id": {"type": "string", "description": "Entity ID of the second board"},
				"width": {"type": "number", "default": 1.0},
				"height": {"type": "number", "default": 1.0},
				"depth": {"type": "number", "default": 1.0},
				"num_fingers": {"type": "integer", "default": 5},
				"offset_x": {"type": "number", "default": 0.0},
				"offset_y": {"type": "number", "default": 0.0},
				"offset_z": {"type": "number", "default": 0.0}
			},
			"required": ["board1_id", "board2_id"]
		}`),
	},
	{
		Name:        "eval_ruby",
		Description: "Evaluate arbitrary Ruby code in SketchUp",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "Ruby code to evaluate in the SketchUp runtime"}
			},
			"required": ["code"]
		}`),
	},
	{
		Name:        "calculate_distance",
		Description: "Calculate distance between two 3D points",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"point1": {"type": "array", "items": {"type": "number"}, "description": "[X, Y, Z] of the first point"},
				"point2": {"type": "array", "items": {"type": "number"}, "description": "[X, Y, Z] of the second point"}
			},
			"required": ["point1", "point2"]
		}`),
	},
	{
		Name:        "measure_components",
		Description: "Measure distances between components",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"component_ids": {"type": "array", "items": {"type": "string"}, "description": "Entity IDs of the components to measure"},
				"type": {"type": "string", "description": "Measurement type", "default": "center_to_center"}
			},
			"required": ["component_ids"]
		}`),
	},
	{
		Name:        "inspect_component",
		Description: "Get detailed information about a component",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"component_id": {"type": "string", "description": "Entity ID of the component to inspect"}
			},
			"required": ["component_id"]
		}`),
	},
	{
		Name:        "create_reference_markers",
		Description: "Create visual reference markers at specified points",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"points": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}, "description": "Marker positions as [X, Y, Z] triples"},
				"size": {"type": "number", "default": 1.0},
				"color": {"type": "string", "default": "red"},
				"label_prefix": {"type": "string", "default": "REF"}
			},
			"required": ["points"]
		}`),
	},
	{
		Name:        "clear_reference_markers",
		Description: "Clear reference markers with specified label prefix",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"label_prefix": {"type": "string", "default": "REF"}
			}
		}`),
	},
	{
		Name:        "snap_align_component",
		Description: "Snap or align one component to another",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"source_component_id": {"type": "string", "description": "Entity ID of the component to move"},
				"target_component_id": {"type": "string", "description": "Entity ID of the component to align to"},
				"alignment_type": {"type": "string", "default": "center_to_center"},
				"offset": {"type": "array", "items": {"type": "number"}, "description": "[X, Y, Z] offset applied after alignment", "default": [0, 0, 0]}
			},
			"required": ["source_component_id", "target_component_id"]
		}`),
	},
	{
		Name:        "create_grid_system",
		Description: "Create a visual grid reference system",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"origin": {"type": "array", "items": {"type": "number"}, "description": "[X, Y, Z] grid origin", "default": [0, 0, 0]},
				"x_spacing": {"type": "number", "default": 10.0},
				"y_spacing": {"type": "number", "default": 10.0},
				"x_count": {"type": "integer", "default": 10},
				"y_count": {"type": "integer", "default": 10},
				"marker_size": {"type": "number", "default": 0.5},
				"show_labels": {"type": "boolean", "default": true},
				"color": {"type": "string", "default": "gray"},
				"label_prefix": {"type": "string", "default": "GRID"}
			}
		}`),
	},
	{
		Name:        "query_all_components",
		Description: "Query all components in the model",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"include_details": {"type": "boolean", "default": true},
				"type_filter": {"type": "string", "description": "Restrict results to one component type"}
			}
		}`),
	},
	{
		Name:        "position_relative_to_component",
		Description: "Position a component relative to another component",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"source_component_id": {"type": "string", "description": "Entity ID of the component to move"},
				"reference_component_id": {"type": "string", "description": "Entity ID of the reference component"},
				"relative_position": {"type": "string", "description": "Placement relative to the reference, such as above or left_of"},
				"offset": {"type": "array", "items": {"type": "number"}, "description": "[X, Y, Z] offset applied after placement", "default": [0, 0, 0]}
			},
			"required": ["source_component_id", "reference_component_id", "relative_position"]
		}`),
	},
	{
		Name:        "position_between_components",
		Description: "Position a component between two other components",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"source_component_id": {"type": "string", "description": "Entity ID of the component to move"},
				"component1_id": {"type": "string", "description": "Entity ID of the first anchor component"},
				"component2_id": {"type": "string", "description": "Entity ID of the second anchor component"},
				"ratio": {"type": "number", "description": "Placement along the anchor span, 0.0 at the first anchor and 1.0 at the second", "default": 0.5},
				"offset": {"type": "array", "items": {"type": "number"}, "description": "[X, Y, Z] offset applied after placement", "default": [0, 0, 0]}
			},
			"required": ["source_component_id", "component1_id", "component2_id"]
		}`),
	},
	{
		Name:        "show_component_bounds",
		Description: "Show bounding boxes for components",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"component_ids": {"type": "array", "items": {"type": "string"}, "description": "Entity IDs of the components to outline"},
				"show_wireframe": {"type": "boolean", "default": true},
				"color": {"type": "string", "default": "yellow"},
				"label_prefix": {"type": "string", "default": "BOUNDS"}
			},
			"required": ["component_ids"]
		}`),
	},
	{
		Name:        "preview_position",
		Description: "Preview where a component would be positioned without creating it",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"type": {"type": "string", "description": "Component type (cube, cylinder, sphere)", "default": "cube"},
				"position": {"type": "array", "items": {"type": "number"}, "description": "[X, Y, Z] of the component center", "default": [0, 0, 0]},
				"dimensions": {"type": "array", "items": {"type": "number"}, "description": "[width, height, depth] in SketchUp units", "default": [1, 1, 1]}
			}
		}`),
	},
}
