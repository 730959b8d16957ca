package toolstest

import (
	"hash/adler32"

	"github.com/ARM-software/tracetooltests-sub000/tracehelpers"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Adler32 is the checksum the tracing tools compute over buffer contents
func Adler32(data []byte) uint32 {
	return adler32.Checksum(data)
}

// AssertBuffer asks the tracing tool for the checksum of a buffer range. It returns 0 when no
// tool is listening.
func (c *Context) AssertBuffer(buffer core1_0.Buffer, offset, size int, comment string) (uint32, error) {
	if c.Helpers == nil {
		return 0, nil
	}

	checksum, err := c.Helpers.AssertBuffer(buffer, offset, size, comment)
	if errors.Is(err, tracehelpers.ErrUnavailable) {
		return 0, nil
	}
	return checksum, err
}

// AssertBufferChecksum compares the tool's checksum of a buffer range against an expected value.
// It passes when no tool is listening.
func (c *Context) AssertBufferChecksum(buffer core1_0.Buffer, offset, size int, comment string, expected uint32) error {
	checksum, err := c.AssertBuffer(buffer, offset, size, comment)
	if err != nil {
		return err
	}

	if checksum != 0 && checksum != expected {
		return errors.Newf("%s: checksum 0x%08x does not match expected 0x%08x", comment, checksum, expected)
	}
	return nil
}
