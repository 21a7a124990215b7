package port

//go:generate mockgen -destination=../service/mocks/idgen_mock.go -package=mocks -source=idgen.go

// IDGenerator allocates recovery ids.
type IDGenerator interface {
	Next() (uint64, error)
}
