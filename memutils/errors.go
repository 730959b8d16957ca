package memutils

import "github.com/cockroachdb/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// OutOfRangeError is returned when a range does not fit inside the memory object it is placed in
var OutOfRangeError error = errors.New("range lies outside of the memory object")
