// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package roulette implements one spin of the lunch roulette.

Service.Recommend resolves the user's position (client coordinates, else IP
geolocation), fetches weather and nearby restaurants concurrently, keeps the
restaurants within the configured budget and picks one at random with its
walking distance. Degraded upstream data is reported in Response.Warnings; a
spin with nothing to pick returns Success false and ErrorInfo.

	svc := roulette.NewService(roulette.Deps{
	    Locations:   locationClient,
	    Weather:     weatherClient,
	    Restaurants: restaurantClient,
	}, cfg.Search)

	resp, err := svc.Recommend(ctx, roulette.Request{IP: clientIP})
*/
package roulette
