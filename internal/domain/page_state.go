package domain

// DropIndicator is the pending drop decision of an active drag.
type DropIndicator struct {
	TargetID string   `json:"targetId"`
	Position Position `json:"position"`
	Rect     Rect     `json:"rect"`
}

// PageState is the complete editor state handed to the rendering layer.
type PageState struct {
	PageID     string         `json:"pageId"`
	Tree       Tree           `json:"tree"`
	SelectedID string         `json:"selectedId,omitempty"`
	DraggingID string         `json:"draggingId,omitempty"`
	Indicator  *DropIndicator `json:"indicator,omitempty"`
	CanUndo    bool           `json:"canUndo"`
	CanRedo    bool           `json:"canRedo"`
}
