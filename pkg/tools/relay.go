package tools

import (
	"context"
	"fmt"

	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/logging"
)

// exchangeSpec describes one relayed operation: the peer operation name,
// its forwarded arguments, and the message templates used to shape the
// outcome into a payload.
type exchangeSpec struct {
	op        string
	args      map[string]interface{}
	success   func(result) string
	failure   string
	errPrefix string
}

// exchange forwards one operation to the extension and shapes whatever
// comes back. Peer-reported failures keep the response under details;
// bridge failures carry the error flag.
func (p *Provider) exchange(ctx context.Context, spec exchangeSpec, requestID interface{}) string {
	raw, err := p.caller.Call(ctx, spec.op, spec.args, requestID)
	if err != nil {
		p.logger.Error("Tool exchange failed",
			logging.String("operation", spec.op),
			logging.ErrorField(err))
		return errorPayload(fmt.Sprintf("%s: %v", spec.errPrefix, err))
	}
	res, ok := decodeResult(raw)
	if !ok {
		p.logger.Error("Tool exchange returned a non-object body",
			logging.String("operation", spec.op))
		return errorPayload(fmt.Sprintf("%s: unexpected response from SketchUp", spec.errPrefix))
	}
	if res.succeeded() {
		message := spec.success(res)
		p.logger.Info(message, logging.String("operation", spec.op))
		return successPayload(message, res)
	}
	reason := res.reason("Unknown error from SketchUp")
	p.logger.Warn("Tool reported failure",
		logging.String("operation", spec.op),
		logging.String("reason", reason))
	return successPayload(fmt.Sprintf("%s. Reason: %s", spec.failure, reason), res)
}

func (p *Provider) createMortiseTenon(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	mortiseID := r.String("mortise_id")
	tenonID := r.String("tenon_id")
	forwarded := map[string]interface{}{
		"mortise_id": mortiseID,
		"tenon_id":   tenonID,
		"width":      r.FloatOr("width", 1.0),
		"height":     r.FloatOr("height", 1.0),
		"depth":      r.FloatOr("depth", 1.0),
		"offset_x":   r.FloatOr("offset_x", 0),
		"offset_y":   r.FloatOr("offset_y", 0),
		"offset_z":   r.FloatOr("offset_z", 0),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "create_mortise_tenon",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Mortise and tenon joint created between components '%s' and '%s'.", mortiseID, tenonID)
		},
		failure:   "Failed to create mortise and tenon joint",
		errPrefix: "Error creating mortise and tenon joint",
	}, requestID), nil
}

func (p *Provider) createDovetail(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	tailID := r.String("tail_id")
	pinID := r.String("pin_id")
	forwarded := map[string]interface{}{
		"tail_id":   tailID,
		"pin_id":    pinID,
		"width":     r.FloatOr("width", 1.0),
		"height":    r.FloatOr("height", 1.0),
		"depth":     r.FloatOr("depth", 1.0),
		"angle":     r.FloatOr("angle", 15.0),
		"num_tails": r.IntOr("num_tails", 3),
		"offset_x":  r.FloatOr("offset_x", 0),
		"offset_y":  r.FloatOr("offset_y", 0),
		"offset_z":  r.FloatOr("offset_z", 0),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "create_dovetail",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Dovetail joint created between components '%s' and '%s'.", tailID, pinID)
		},
		failure:   "Failed to create dovetail joint",
		errPrefix: "Error creating dovetail joint",
	}, requestID), nil
}

func (p *Provider) createFingerJoint(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	board1ID := r.String("board1_id")
	board2ID := r.String("board2_id")
	forwarded := map[string]interface{}{
		"board1_id":   board1ID,
		"board2_id":   board2ID,
		"width":       r.FloatOr("width", 1.0),
		"height":      r.FloatOr("height", 1.0),
		"depth":       r.FloatOr("depth", 1.0),
		"num_fingers": r.IntOr("num_fingers", 5),
		"offset_x":    r.FloatOr("offset_x", 0),
		"offset_y":    r.FloatOr("offset_y", 0),
		"offset_z":    r.FloatOr("offset_z", 0),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "create_finger_joint",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Finger joint created between components '%s' and '%s'.", board1ID, board2ID)
		},
		failure:   "Failed to create finger joint",
		errPrefix: "Error creating finger joint",
	}, requestID), nil
}

func (p *Provider) evalRuby(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	code := r.String("code")
	if err := r.Err(); err != nil {
		return "", err
	}
	p.logger.Info("Ruby evaluation requested", logging.Int("code_length", len(code)))

	raw, err := p.caller.Call(ctx, "eval_ruby", map[string]interface{}{"code": code}, requestID)
	if err != nil {
		p.logger.Error("Ruby evaluation failed", logging.ErrorField(err))
		return errorPayload(fmt.Sprintf("Error evaluating Ruby code: %v", err)), nil
	}
	res, ok := decodeResult(raw)
	if !ok {
		return errorPayload("Error evaluating Ruby code: unexpected response from SketchUp"), nil
	}
	return successPayload(rubyResultText(res), res), nil
}

// rubyResultText extracts the first text block from an eval response.
// Anything without one reads as a bare success.
func rubyResultText(res result) string {
	content, ok := res["content"].([]interface{})
	if !ok || len(content) == 0 {
		return "Success"
	}
	first, ok := content[0].(map[string]interface{})
	if !ok {
		return "Success"
	}
	return result(first).text("text", "Success")
}

func (p *Provider) calculateDistance(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	point1 := r.Vector("point1")
	point2 := r.Vector("point2")
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "calculate_distance",
		args: map[string]interface{}{"point1": point1, "point2": point2},
		success: func(res result) string {
			if res.has("distance") {
				return fmt.Sprintf("Distance between the two points: %s.", res.text("distance", ""))
			}
			return "Distance calculated."
		},
		failure:   "Failed to calculate distance",
		errPrefix: "Error calculating distance",
	}, requestID), nil
}

func (p *Provider) measureComponents(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	componentIDs := r.Strings("component_ids")
	measureType := r.StringOr("type", "center_to_center")
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "measure_components",
		args: map[string]interface{}{"component_ids": componentIDs, "type": measureType},
		success: func(result) string {
			return fmt.Sprintf("Measured %d components (%s).", len(componentIDs), measureType)
		},
		failure:   "Failed to measure components",
		errPrefix: "Error measuring components",
	}, requestID), nil
}

func (p *Provider) inspectComponent(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	componentID := r.String("component_id")
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "inspect_component",
		args: map[string]interface{}{"component_id": componentID},
		success: func(result) string {
			return fmt.Sprintf("Component '%s' inspected.", componentID)
		},
		failure:   fmt.Sprintf("Failed to inspect component '%s'", componentID),
		errPrefix: "Error inspecting component",
	}, requestID), nil
}

func (p *Provider) createReferenceMarkers(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	points := r.Points("points")
	forwarded := map[string]interface{}{
		"points":       points,
		"size":         r.FloatOr("size", 1.0),
		"color":        r.StringOr("color", "red"),
		"label_prefix": r.StringOr("label_prefix", "REF"),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "create_reference_markers",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Created %d reference markers.", len(points))
		},
		failure:   "Failed to create reference markers",
		errPrefix: "Error creating reference markers",
	}, requestID), nil
}

func (p *Provider) clearReferenceMarkers(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	labelPrefix := r.StringOr("label_prefix", "REF")
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "clear_reference_markers",
		args: map[string]interface{}{"label_prefix": labelPrefix},
		success: func(result) string {
			return fmt.Sprintf("Cleared reference markers with prefix '%s'.", labelPrefix)
		},
		failure:   "Failed to clear reference markers",
		errPrefix: "Error clearing reference markers",
	}, requestID), nil
}

func (p *Provider) snapAlignComponent(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	sourceID := r.String("source_component_id")
	targetID := r.String("target_component_id")
	alignmentType := r.StringOr("alignment_type", "center_to_center")
	forwarded := map[string]interface{}{
		"source_component_id": sourceID,
		"target_component_id": targetID,
		"alignment_type":      alignmentType,
		"offset":              r.VectorOr("offset", []float64{0, 0, 0}),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "snap_align_component",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Component '%s' aligned to '%s' (%s).", sourceID, targetID, alignmentType)
		},
		failure:   "Failed to snap/align component",
		errPrefix: "Error snapping/aligning component",
	}, requestID), nil
}

func (p *Provider) createGridSystem(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	xCount := r.IntOr("x_count", 10)
	yCount := r.IntOr("y_count", 10)
	forwarded := map[string]interface{}{
		"origin":       r.VectorOr("origin", []float64{0, 0, 0}),
		"x_spacing":    r.FloatOr("x_spacing", 10.0),
		"y_spacing":    r.FloatOr("y_spacing", 10.0),
		"x_count":      xCount,
		"y_count":      yCount,
		"marker_size":  r.FloatOr("marker_size", 0.5),
		"show_labels":  r.BoolOr("show_labels", true),
		"color":        r.StringOr("color", "gray"),
		"label_prefix": r.StringOr("label_prefix", "GRID"),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "create_grid_system",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Created a %dx%d grid system.", xCount, yCount)
		},
		failure:   "Failed to create grid system",
		errPrefix: "Error creating grid system",
	}, requestID), nil
}

func (p *Provider) queryAllComponents(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	forwarded := map[string]interface{}{
		"include_details": r.BoolOr("include_details", true),
	}
	if typeFilter := r.StringOr("type_filter", ""); typeFilter != "" {
		forwarded["type_filter"] = typeFilter
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "query_all_components",
		args: forwarded,
		success: func(res result) string {
			if components, ok := res["components"].([]interface{}); ok {
				return fmt.Sprintf("Found %d components.", len(components))
			}
			return "Component query completed."
		},
		failure:   "Failed to query components",
		errPrefix: "Error querying components",
	}, requestID), nil
}

func (p *Provider) positionRelative(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	sourceID := r.String("source_component_id")
	referenceID := r.String("reference_component_id")
	relativePosition := r.String("relative_position")
	forwarded := map[string]interface{}{
		"source_component_id":    sourceID,
		"reference_component_id": referenceID,
		"relative_position":      relativePosition,
		"offset":                 r.VectorOr("offset", []float64{0, 0, 0}),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "position_relative_to_component",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Component '%s' positioned '%s' relative to '%s'.", sourceID, relativePosition, referenceID)
		},
		failure:   "Failed to position component relatively",
		errPrefix: "Error positioning component relatively",
	}, requestID), nil
}

func (p *Provider) positionBetween(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	sourceID := r.String("source_component_id")
	component1ID := r.String("component1_id")
	component2ID := r.String("component2_id")
	forwarded := map[string]interface{}{
		"source_component_id": sourceID,
		"component1_id":       component1ID,
		"component2_id":       component2ID,
		"ratio":               r.FloatOr("ratio", 0.5),
		"offset":              r.VectorOr("offset", []float64{0, 0, 0}),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "position_between_components",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Component '%s' positioned between '%s' and '%s'.", sourceID, component1ID, component2ID)
		},
		failure:   "Failed to position component between others",
		errPrefix: "Error positioning component between others",
	}, requestID), nil
}

func (p *Provider) showComponentBounds(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	componentIDs := r.Strings("component_ids")
	forwarded := map[string]interface{}{
		"component_ids":  componentIDs,
		"show_wireframe": r.BoolOr("show_wireframe", true),
		"color":          r.StringOr("color", "yellow"),
		"label_prefix":   r.StringOr("label_prefix", "BOUNDS"),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "show_component_bounds",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Showing bounds for %d components.", len(componentIDs))
		},
		failure:   "Failed to show component bounds",
		errPrefix: "Error showing component bounds",
	}, requestID), nil
}

func (p *Provider) previewPosition(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	compType := r.StringOr("type", "cube")
	forwarded := map[string]interface{}{
		"type":       compType,
		"position":   r.VectorOr("position", []float64{0, 0, 0}),
		"dimensions": r.VectorOr("dimensions", []float64{1, 1, 1}),
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return p.exchange(ctx, exchangeSpec{
		op:   "preview_position",
		args: forwarded,
		success: func(result) string {
			return fmt.Sprintf("Position preview calculated for %s.", compType)
		},
		failure:   "Failed to preview position",
		errPrefix: "Error previewing position",
	}, requestID), nil
}
