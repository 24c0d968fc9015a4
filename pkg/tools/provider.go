package tools

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/logging"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/protocol"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/sketchup"
)

// Provider serves the SketchUp tool catalog over a Caller. Handlers
// validate arguments before any traffic is sent; once an exchange
// starts, its outcome is always delivered as a payload, never as a Go
// error.
type Provider struct {
	caller sketchup.Caller
	logger logging.Logger
}

// NewProvider returns a Provider relaying tool calls through caller.
// A nil logger disables provider logging.
func NewProvider(caller sketchup.Caller, logger logging.Logger) *Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{caller: caller, logger: logger}
}

// ListTools returns the advertised tool catalog.
func (p *Provider) ListTools() []protocol.Tool {
	return Catalog()
}

type toolHandler func(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error)

// CallTool dispatches one tool invocation and wraps its payload in a
// result envelope. It returns an error only for unknown tools and
// malformed arguments; those are rejected before reaching the peer.
func (p *Provider) CallTool(ctx context.Context, name string, args map[string]interface{}, requestID interface{}) (*protocol.CallToolResult, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	handler := p.handler(name)
	if handler == nil {
		return nil, bridgeerrors.CreateMethodNotFoundError(name, requestID)
	}
	p.logger.Info("Tool invoked",
		logging.String("tool", name),
		logging.Any("request_id", requestID))
	text, err := handler(ctx, args, requestID)
	if err != nil {
		return nil, err
	}
	return protocol.NewToolResult(text), nil
}

func (p *Provider) handler(name string) toolHandler {
	switch name {
	case "create_component":
		return p.createComponent
	case "delete_component":
		return p.deleteComponent
	case "transform_component":
		return p.transformComponent
	case "get_selection":
		return p.getSelection
	case "set_material":
		return p.setMaterial
	case "export_scene":
		return p.exportScene
	case "create_mortise_tenon":
		return p.createMortiseTenon
	case "create_dovetail":
		return p.createDovetail
	case "create_finger_joint":
		return p.createFingerJoint
	case "eval_ruby":
		return p.evalRuby
	case "calculate_distance":
		return p.calculateDistance
	case "measure_components":
		return p.measureComponents
	case "inspect_component":
		return p.inspectComponent
	case "create_reference_markers":
		return p.createReferenceMarkers
	case "clear_reference_markers":
		return p.clearReferenceMarkers
	case "snap_align_component":
		return p.snapAlignComponent
	case "create_grid_system":
		return p.createGridSystem
	case "query_all_components":
		return p.queryAllComponents
	case "position_relative_to_component":
		return p.positionRelative
	case "position_between_components":
		return p.positionBetween
	case "show_component_bounds":
		return p.showComponentBounds
	case "preview_position":
		return p.previewPosition
	}
	return nil
}

var (
	validDirections  = []string{"up", "down", "forward", "back", "right", "left", "auto"}
	validOriginModes = []string{"center", "bottom_center", "top_center", "min_corner", "max_corner"}
)

func (p *Provider) createComponent(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	compType := r.StringOr("type", "cube")
	position := r.VectorOr("position", nil)
	dimensions := r.VectorOr("dimensions", nil)
	direction := r.StringOr("direction", "up")
	originMode := r.StringOr("origin_mode", "center")
	if err := r.Err(); err != nil {
		return "", err
	}

	if !slices.Contains(validDirections, direction) {
		err := bridgeerrors.InvalidChoice("direction", direction, validDirections)
		return errorPayload(fmt.Sprintf("Error creating component: %v", err)), nil
	}
	if !slices.Contains(validOriginModes, originMode) {
		err := bridgeerrors.InvalidChoice("origin_mode", originMode, validOriginModes)
		return errorPayload(fmt.Sprintf("Error creating component: %v", err)), nil
	}

	dimensions = normalizeDimensions(dimensions, compType)
	if position == nil {
		position = []float64{0, 0, 0}
	}

	raw, err := p.caller.Call(ctx, "create_component_with_verification", map[string]interface{}{
		"type":        compType,
		"position":    position,
		"dimensions":  dimensions,
		"direction":   direction,
		"origin_mode": originMode,
	}, requestID)
	if err != nil {
		p.logger.Error("Component creation failed", logging.ErrorField(err))
		return errorPayload(fmt.Sprintf("Error creating component: %v", err)), nil
	}
	res, ok := decodeResult(raw)
	if !ok {
		return errorPayload("Error creating component: unexpected response from SketchUp"), nil
	}
	if res.succeeded() {
		message := createComponentMessage(compType, direction, originMode, res)
		p.logger.Info("Component created", logging.String("summary", message))
		return successPayload(message, res), nil
	}
	reason := res.text("error", "Unknown error during component creation.")
	p.logger.Warn("Component creation rejected", logging.String("reason", reason))
	return successPayload(fmt.Sprintf("Failed to create component: %s", reason), res), nil
}

// normalizeDimensions pads or converts the requested dimensions to three
// axes and clamps each to a minimum of 0.1 units. Cylinders accept the
// two-value [diameter, height] form.
func normalizeDimensions(dims []float64, compType string) []float64 {
	switch {
	case len(dims) == 0:
		dims = []float64{1, 1, 1}
	case len(dims) == 2 && compType == "cylinder":
		dims = []float64{dims[0], dims[0], dims[1]}
	default:
		for len(dims) < 3 {
			dims = append(dims, dims[len(dims)-1])
		}
	}
	out := make([]float64, len(dims))
	for i, d := range dims {
		out[i] = math.Max(0.1, d)
	}
	return out
}

func createComponentMessage(inputType, direction, originMode string, res result) string {
	verification := res.section("verification")
	compType := capitalize(inputType)
	if t, ok := verification["type"].(string); ok {
		compType = capitalize(t)
	}
	bounds := verification.section("bounds")
	dims := "N/A"
	if bounds.has("width", "height", "depth") {
		dims = fmt.Sprintf("[%.2f, %.2f, %.2f]",
			bounds.float("width"), bounds.float("height"), bounds.float("depth"))
	}
	return fmt.Sprintf("%s (ID: %s) created. Created with direction='%s', origin_mode='%s'. Actual center: %s, Dimensions (W,H,D): %s. %s",
		compType, res.text("id", "unknown"), direction, originMode,
		bounds.text("center", "N/A"), dims, res.text("positioning_explanation", ""))
}

func (p *Provider) deleteComponent(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	id := r.String("id")
	if err := r.Err(); err != nil {
		return "", err
	}

	raw, err := p.caller.Call(ctx, "delete_component", map[string]interface{}{"id": id}, requestID)
	if err != nil {
		p.logger.Error("Component deletion failed", logging.String("id", id), logging.ErrorField(err))
		return errorPayload(fmt.Sprintf("Error deleting component ID '%s': %v", id, err)), nil
	}
	res, ok := decodeResult(raw)
	if !ok {
		return errorPayload(fmt.Sprintf("Error deleting component ID '%s': unexpected response from SketchUp", id)), nil
	}
	switch {
	case res.succeeded():
		message := fmt.Sprintf("Component with ID '%s' deleted successfully.", id)
		p.logger.Info(message)
		return successPayload(message, res), nil
	case !res.empty():
		reason := res.text("message", fmt.Sprintf("Component ID '%s' not found or another error occurred.", id))
		message := fmt.Sprintf("Failed to delete component with ID '%s'. Reason: %s", id, reason)
		p.logger.Warn(message)
		return successPayload(message, res), nil
	default:
		message := fmt.Sprintf("Received an unexpected or empty response when trying to delete component ID '%s'.", id)
		p.logger.Error(message)
		return errorPayload(message), nil
	}
}

func (p *Provider) transformComponent(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	id := r.String("id")

	arguments := map[string]interface{}{"id": id}
	var applied []string
	if r.Has("position") {
		position := r.Vector("position")
		arguments["position"] = position
		applied = append(applied, fmt.Sprintf("position to %s", compactJSON(position)))
	}
	if r.Has("rotation") {
		rotation := r.Vector("rotation")
		arguments["rotation"] = rotation
		applied = append(applied, fmt.Sprintf("rotation to %s", compactJSON(rotation)))
	}
	if r.Has("scale") {
		scale := r.Scale("scale")
		arguments["scale"] = scale
		applied = append(applied, fmt.Sprintf("scale to %s", compactJSON(scale)))
	}
	if err := r.Err(); err != nil {
		return "", err
	}

	if len(applied) == 0 {
		message := "No transformation (position, rotation, or scale) provided. Component not changed."
		p.logger.Info(message)
		return successPayload(message, map[string]interface{}{
			"success":         true,
			"id":              id,
			"changes_applied": false,
		}), nil
	}

	raw, err := p.caller.Call(ctx, "transform_component", arguments, requestID)
	if err != nil {
		p.logger.Error("Component transform failed", logging.String("id", id), logging.ErrorField(err))
		return errorPayload(fmt.Sprintf("Error transforming component ID '%s': %v", id, err)), nil
	}
	res, ok := decodeResult(raw)
	if !ok {
		return errorPayload(fmt.Sprintf("Error transforming component ID '%s': unexpected response from SketchUp", id)), nil
	}
	switch {
	case res.succeeded():
		message := fmt.Sprintf("Component ID '%s' transformed successfully: %s.", id, strings.Join(applied, ", "))
		p.logger.Info(message)
		return successPayload(message, res), nil
	case !res.empty():
		reason := res.text("message", fmt.Sprintf("Component ID '%s' not found or transform failed.", id))
		message := fmt.Sprintf("Failed to transform component ID '%s'. Reason: %s", id, reason)
		p.logger.Warn(message)
		return successPayload(message, res), nil
	default:
		message := fmt.Sprintf("Received an unexpected or empty response when trying to transform component ID '%s'.", id)
		p.logger.Error(message)
		return errorPayload(message), nil
	}
}

func (p *Provider) getSelection(ctx context.Context, _ map[string]interface{}, requestID interface{}) (string, error) {
	raw, err := p.caller.Call(ctx, "get_selection", map[string]interface{}{}, requestID)
	if err != nil {
		p.logger.Error("Selection query failed", logging.ErrorField(err))
		return errorPayload(fmt.Sprintf("Error getting selection: %v", err)), nil
	}
	res, ok := decodeResult(raw)
	if !ok {
		return errorPayload("Error getting selection: unexpected response from SketchUp"), nil
	}
	switch {
	case res.succeeded():
		message := selectionMessage(res)
		p.logger.Info(message)
		return successPayload(message, res), nil
	case !res.empty():
		reason := res.text("message", "Failed to retrieve selection from SketchUp.")
		message := fmt.Sprintf("Could not retrieve selection. Reason: %s", reason)
		p.logger.Warn(message)
		return successPayload(message, res), nil
	default:
		message := "Received an unexpected or empty response when trying to get selection."
		p.logger.Error(message)
		return errorPayload(message), nil
	}
}

func selectionMessage(res result) string {
	items, _ := res["selection"].([]interface{})
	if len(items) == 0 {
		return "No components are currently selected."
	}
	descs := make([]string, 0, len(items))
	for _, item := range items {
		entry := result{}
		if m, ok := item.(map[string]interface{}); ok {
			entry = result(m)
		}
		descs = append(descs, fmt.Sprintf("%s (ID: %s)",
			entry.text("type", "Entity"), entry.text("id", "Unknown ID")))
	}
	return fmt.Sprintf("Currently selected components (%d): %s.", len(items), strings.Join(descs, ", "))
}

func (p *Provider) setMaterial(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	id := r.String("id")
	material := r.String("material")
	if err := r.Err(); err != nil {
		return "", err
	}

	raw, err := p.caller.Call(ctx, "set_material", map[string]interface{}{
		"id":       id,
		"material": material,
	}, requestID)
	if err != nil {
		p.logger.Error("Material assignment failed", logging.String("id", id), logging.ErrorField(err))
		return errorPayload(fmt.Sprintf("Error setting material for component ID '%s': %v", id, err)), nil
	}
	res, ok := decodeResult(raw)
	if !ok {
		return errorPayload(fmt.Sprintf("Error setting material for component ID '%s': unexpected response from SketchUp", id)), nil
	}
	switch {
	case res.succeeded():
		message := fmt.Sprintf("Material for component ID '%s' successfully set to '%s'.", id, material)
		p.logger.Info(message)
		return successPayload(message, res), nil
	case !res.empty():
		reason := res.text("message", fmt.Sprintf("Component ID '%s' or material '%s' not found, or another error occurred.", id, material))
		message := fmt.Sprintf("Failed to set material '%s' for component ID '%s'. Reason: %s", material, id, reason)
		p.logger.Warn(message)
		return successPayload(message, res), nil
	default:
		message := fmt.Sprintf("Received an unexpected or empty response when trying to set material for component ID '%s'.", id)
		p.logger.Error(message)
		return errorPayload(message), nil
	}
}

func (p *Provider) exportScene(ctx context.Context, args map[string]interface{}, requestID interface{}) (string, error) {
	r := newArgReader(args)
	format := r.StringOr("format", "skp")
	if err := r.Err(); err != nil {
		return "", err
	}
	upper := strings.ToUpper(format)

	raw, err := p.caller.Call(ctx, "export", map[string]interface{}{"format": format}, requestID)
	if err != nil {
		p.logger.Error("Scene export failed", logging.String("format", format), logging.ErrorField(err))
		return errorPayload(fmt.Sprintf("Error exporting scene in %s format: %v", upper, err)), nil
	}
	res, ok := decodeResult(raw)
	if !ok {
		return errorPayload(fmt.Sprintf("Error exporting scene in %s format: unexpected response from SketchUp", upper)), nil
	}
	switch {
	case res.succeeded():
		message := fmt.Sprintf("Scene successfully exported in %s format. File saved to: %s.",
			upper, res.text("file_path", "An unspecified location by SketchUp"))
		p.logger.Info(message)
		return successPayload(message, res), nil
	case !res.empty():
		reason := res.text("message", fmt.Sprintf("Export to %s format failed.", upper))
		message := fmt.Sprintf("Failed to export scene in %s format. Reason: %s", upper, reason)
		p.logger.Warn(message)
		return successPayload(message, res), nil
	default:
		message := fmt.Sprintf("Received an unexpected or empty response when trying to export scene in %s format.", upper)
		p.logger.Error(message)
		return errorPayload(message), nil
	}
}
