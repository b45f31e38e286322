package cse

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the tracer and meter name used by the Encryptor.
const instrumentationName = "github.com/rbaliyan/cse"

// Operation names used for spans and the operation metric attribute.
const (
	opEncryptCardData = "cse.EncryptCardData"
	opEncrypt         = "cse.Encrypt"
)

// Encryptor turns card fields into versioned, base64 encoded RSA-OAEP tokens.
// It is safe for concurrent use if the KeyProvider is. StaticKeyProvider
// satisfies this requirement.
type Encryptor struct {
	provider  KeyProvider
	encrypter Encrypter
	tracer    trace.Tracer

	encryptions   metric.Int64Counter
	plaintextSize metric.Int64Histogram
}

// Option configures an Encryptor.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	encrypter      Encrypter
	random         io.Reader
}

// WithTracerProvider sets the tracer provider. The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider. The global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithEncrypter replaces the RSA-OAEP/SHA-1 primitive.
func WithEncrypter(e Encrypter) Option {
	return func(o *options) { o.encrypter = e }
}

// WithRandom sets the randomness source of the default primitive.
// It has no effect together with WithEncrypter.
func WithRandom(r io.Reader) Option {
	return func(o *options) { o.random = r }
}

// NewEncryptor creates an Encryptor that encrypts under the current key of provider.
// Returns an error if provider is nil.
func NewEncryptor(provider KeyProvider, opts ...Option) (*Encryptor, error) {
	if provider == nil {
		return nil, fmt.Errorf("cse: NewEncryptor provider is nil")
	}

	o := options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.encrypter == nil {
		o.encrypter = OAEPSHA1(o.random)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	encryptions, err := meter.Int64Counter("cse.encryptions",
		metric.WithDescription("Number of card data encryptions"),
		metric.WithUnit("{encryption}"),
	)
	if err != nil {
		return nil, fmt.Errorf("cse: failed to create encryptions counter: %w", err)
	}
	plaintextSize, err := meter.Int64Histogram("cse.plaintext.size",
		metric.WithDescription("Size of the plaintext handed to RSA-OAEP"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("cse: failed to create plaintext size histogram: %w", err)
	}

	return &Encryptor{
		provider:      provider,
		encrypter:     o.encrypter,
		tracer:        o.tracerProvider.Tracer(instrumentationName),
		encryptions:   encryptions,
		plaintextSize: plaintextSize,
	}, nil
}

// EncryptCardData encrypts the comma joined fields
// "number,year,month,cvc,cardholder" and returns "001" followed by the
// standard base64 of the ciphertext. Fields are not validated and commas
// inside them are not escaped.
func (e *Encryptor) EncryptCardData(ctx context.Context, number, year, month, cvc, cardholder string) (string, error) {
	c := Card{Number: number, Year: year, Month: month, Cvc: cvc, Cardholder: cardholder}
	return e.seal(ctx, opEncryptCardData, []byte(c.plaintext()))
}

// EncryptCard is EncryptCardData taking the fields from c. Brand is not part of the plaintext.
func (e *Encryptor) EncryptCard(ctx context.Context, c Card) (string, error) {
	return e.seal(ctx, opEncryptCardData, []byte(c.plaintext()))
}

// Encrypt encrypts the CVC on its own, without any field framing, and
// returns a token in the same "001" format.
func (e *Encryptor) Encrypt(ctx context.Context, cvc string) (string, error) {
	return e.seal(ctx, opEncrypt, []byte(cvc))
}

// seal encrypts plaintext under the current key and formats the token.
// The plaintext buffer is wiped before returning.
func (e *Encryptor) seal(ctx context.Context, op string, plaintext []byte) (token string, err error) {
	defer memguard.WipeBytes(plaintext)

	ctx, span := e.tracer.Start(ctx, op, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	size := int64(len(plaintext))
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		attrs := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("result", result),
		)
		e.encryptions.Add(ctx, 1, attrs)
		e.plaintextSize.Record(ctx, size, attrs)
	}()

	key, err := e.provider.CurrentKey()
	if err != nil {
		return "", fmt.Errorf("cse: failed to get current key: %w", err)
	}
	pub, err := publicKey(key)
	if err != nil {
		return "", err
	}
	span.SetAttributes(
		attribute.String("cse.key.id", key.ID),
		attribute.Int("cse.key.bits", key.Structure.Bits),
	)

	ciphertext, err := e.encrypter.Encrypt(pub, plaintext)
	if err != nil {
		return "", &EncryptionError{Message: "encrypting card data failed", Err: err}
	}

	log.WithFields(log.Fields{
		"operation": op,
		"key_id":    key.ID,
	}).Debug("cse: encrypted card data")

	return tokenVersion + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// publicKey returns the imported key of k, importing the structure when a
// provider supplied only the DER bytes.
func publicKey(k Key) (*rsa.PublicKey, error) {
	if k.Public != nil {
		return k.Public, nil
	}
	if len(k.Structure.DER) == 0 {
		return nil, fmt.Errorf("%w: key %q has no public key", ErrKeyConstruction, k.ID)
	}
	return k.Structure.PublicKey()
}
