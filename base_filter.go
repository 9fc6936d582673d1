package precisionbloom

// BaseFilter is a membership filter over items of type T
type BaseFilter[T any] interface {
	Insert(element T) (bool, error)
	Lookup(element T) (bool, error)
}
