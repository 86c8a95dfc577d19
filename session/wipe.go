package session

import (
	"context"

	"github.com/MauroHerreraJ/vigia/store"
)

// wipe removes every session record key. The batch removal is attempted
// first; if the batch fails, each key is retried individually so a partial
// store failure never aborts the rest of the wipe. The access token is the
// one key whose removal is verified by re-reading, since a surviving token
// would leave the device looking authorized.
func (c *Controller) wipe(ctx context.Context) {
	keys := store.SessionKeys()

	if err := c.st.RemoveMany(ctx, keys); err != nil {
		c.log.Warn().Err(err).Msg("batch wipe failed, retrying key by key")
		for _, key := range keys {
			if err := c.st.Remove(ctx, key); err != nil {
				c.log.Error().Err(err).Str("key", key).Msg("wipe: key removal failed")
			}
		}
	}

	if _, ok, _ := c.st.Get(ctx, store.KeyAccessToken); ok {
		c.log.Warn().Msg("access token survived wipe, removing again")
		if err := c.st.Remove(ctx, store.KeyAccessToken); err != nil {
			c.log.Error().Err(err).Msg("wipe: access token removal failed")
		}
	}
}
