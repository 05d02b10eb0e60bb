package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "dashboard:version"
	bumpChannel     = "dashboard.bump"
)

// versionMaxAge tope de vida de la versión local; cubre avisos perdidos mientras
// la suscripción se reconecta.
const versionMaxAge = 30 * time.Second

// Cache caché JSON con versión global: Bump invalida todas las entradas a la vez
// cambiando la versión que forma parte de cada clave.
//
// Mientras ListenForInvalidation está activo la instancia guarda la versión en
// memoria y BuildKey no consulta Redis; los Bump de cualquier instancia llegan
// por pub/sub y actualizan esa copia local.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	listening bool
	local     int64
	loadedAt  time.Time
}

// NewCache instancia la caché. Con client nil todas las operaciones pasan directo
// al loader (uso en tests y herramientas; cmd/api siempre tiene Redis).
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl, now: time.Now}
}

// Version devuelve la versión actual, inicializándola si falta.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	if ver, ok := c.localVersion(); ok {
		return ver, nil
	}
	ver, err := c.remoteVersion(ctx)
	if err != nil {
		return 0, err
	}
	c.adopt(ver, true)
	return ver, nil
}

func (c *Cache) remoteVersion(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// localVersion devuelve la copia en memoria si hay suscripción y no caducó.
func (c *Cache) localVersion() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.listening || c.local == 0 || c.now().Sub(c.loadedAt) > versionMaxAge {
		return 0, false
	}
	return c.local, true
}

// adopt guarda ver como versión local si es mayor que la conocida. fresh indica
// que viene de Redis y renueva su vigencia aunque no cambie.
func (c *Cache) adopt(ver int64, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.listening {
		return
	}
	switch {
	case ver > c.local:
		c.local = ver
		c.loadedAt = c.now()
	case fresh:
		c.loadedAt = c.now()
	}
}

// BuildKey compone la clave con la versión vigente.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON lee el valor cacheado en dest o lo calcula con loader y lo guarda.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalida la caché incrementando la versión y avisando a las demás instancias.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	c.adopt(ver, true)
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation se suscribe a los avisos de Bump hasta que ctx termine y
// activa la versión en memoria. Al terminar la instancia vuelve a leer la versión
// de Redis en cada BuildKey.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("cache: suscribir %s: %w", bumpChannel, err)
	}
	c.setListening(true)
	go func() {
		defer func() {
			c.setListening(false)
			_ = pubsub.Close()
		}()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				c.adopt(ver, false)
			}
		}
	}()
	return nil
}

func (c *Cache) setListening(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listening = on
	c.local = 0
	c.loadedAt = time.Time{}
}
