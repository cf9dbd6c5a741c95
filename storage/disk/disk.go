package disk

const (
	DEFAULT_PAGE_SIZE     = 4096
	DEFAULT_PAGE_CAPACITY = 16
	INVALID_PAGE_ID       = -1
)
