package sim

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

var idGeneratorMutex sync.Mutex
var idGenerator IDGenerator

// UseXIDGenerator configures the ID generator to produce globally unique
// xid-based IDs instead of sequential ones. Sequential IDs keep event logs
// deterministic across runs; xids are unique across emulator instances.
func UseXIDGenerator() {
	idGeneratorMutex.Lock()
	idGenerator = xidGenerator{}
	idGeneratorMutex.Unlock()
}

// GetIDGenerator returns the ID generator used in the current emulation
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGenerator == nil {
		idGenerator = &sequentialIDGenerator{}
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type xidGenerator struct{}

func (g xidGenerator) Generate() string {
	return xid.New().String()
}
