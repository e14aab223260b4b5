package listing

// PageControl is one button in the pager: a page number or an ellipsis.
type PageControl struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// maxPlainPages is the largest page count rendered without ellipses.
const maxPlainPages = 7

// PageControls lays out the pager for current of totalPages.
//
//	total <= 7          1 2 3 4 5 6 7
//	current <= 4        1 2 3 4 5 … N
//	current >= N-3      1 … N-4 N-3 N-2 N-1 N
//	otherwise           1 … c-1 c c+1 … N
func PageControls(current, totalPages int) []PageControl {
	if totalPages <= 0 {
		return nil
	}
	current = ClampPage(current, totalPages)

	var pages []int // 0 marks an ellipsis
	switch {
	case totalPages <= maxPlainPages:
		for p := 1; p <= totalPages; p++ {
			pages = append(pages, p)
		}
	case current <= 4:
		pages = []int{1, 2, 3, 4, 5, 0, totalPages}
	case current >= totalPages-3:
		pages = []int{1, 0}
		for p := totalPages - 4; p <= totalPages; p++ {
			pages = append(pages, p)
		}
	default:
		pages = []int{1, 0, current - 1, current, current + 1, 0, totalPages}
	}

	controls := make([]PageControl, 0, len(pages))
	for _, p := range pages {
		if p == 0 {
			controls = append(controls, PageControl{Ellipsis: true})
			continue
		}
		controls = append(controls, PageControl{Page: p, Current: p == current})
	}
	return controls
}
