package cellgo

import (
	"context"
	"time"
)

// Width returns the active storage width.
func (c *CellArray) Width() Width { return c.storage.Width() }

// DefaultWidth returns the width configured with WithDefaultWidth.
func (c *CellArray) DefaultWidth() Width { return c.opts.defaultWidth }

// IsStorage64Bit reports whether 64-bit storage is active.
func (c *CellArray) IsStorage64Bit() bool { return c.Width() == Width64 }

// IsStorageShareable reports whether the storage element type is ID, so that
// CellAtID and OffsetsArray64 hand out the live arrays without copying.
func (c *CellArray) IsStorageShareable() bool { return c.IsStorage64Bit() }

// Use32BitStorage switches to empty 32-bit storage.
// It is a no-op when 32-bit storage is already active; otherwise the content is discarded.
func (c *CellArray) Use32BitStorage() { c.use(Width32) }

// Use64BitStorage switches to empty 64-bit storage.
// It is a no-op when 64-bit storage is already active; otherwise the content is discarded.
func (c *CellArray) Use64BitStorage() { c.use(Width64) }

// UseDefaultStorage switches to empty storage of the default width.
func (c *CellArray) UseDefaultStorage() { c.use(c.opts.defaultWidth) }

func (c *CellArray) use(w Width) {
	if c.Width() == w {
		return
	}
	c.dropReservation()
	c.store().Use(w)
	c.structural()
}

// CanConvertTo32BitStorage reports whether every offset and point id fits int32.
func (c *CellArray) CanConvertTo32BitStorage() bool { return c.store().CanConvertToNarrow() }

// CanConvertTo64BitStorage always reports true.
func (c *CellArray) CanConvertTo64BitStorage() bool { return true }

// ConvertTo32BitStorage converts the content to 32-bit storage.
//
// If a value does not fit, it returns a *ConversionError wrapping
// ErrLossyConversion and the cell array is unchanged.
func (c *CellArray) ConvertTo32BitStorage() error { return c.convert(Width32) }

// ConvertTo64BitStorage converts the content to 64-bit storage. It never fails;
// the error result keeps the signature aligned with ConvertTo32BitStorage.
func (c *CellArray) ConvertTo64BitStorage() error { return c.convert(Width64) }

// ConvertToDefaultStorage converts the content to the default width.
func (c *CellArray) ConvertToDefaultStorage() error { return c.convert(c.opts.defaultWidth) }

// ConvertToSmallestStorage converts to 32-bit storage when the content fits
// and to 64-bit storage otherwise.
func (c *CellArray) ConvertToSmallestStorage() error {
	if c.CanConvertTo32BitStorage() {
		return c.convert(Width32)
	}
	return c.convert(Width64)
}

func (c *CellArray) convert(to Width) error {
	from := c.Width()
	if from == to {
		return nil
	}

	start := time.Now()
	s := c.store()
	var err error
	if to == Width32 {
		if cerr := s.ConvertToNarrow(); cerr != nil {
			err = &ConversionError{From: from, To: to, cause: cerr}
		}
	} else {
		s.ConvertToWide()
	}
	if err == nil {
		c.dropReservation()
		c.structural()
	}

	c.opts.logger.LogConvert(context.Background(), from, to, c.NumberOfCells(), err)
	c.opts.metricsCollector.RecordConvert(to, time.Since(start), err)
	return err
}
